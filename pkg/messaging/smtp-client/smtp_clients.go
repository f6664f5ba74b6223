package smtpclient

import (
	"crypto/tls"
	"errors"
	"log/slog"
	"net/smtp"
	"net/textproto"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/knadh/smtppool"
)

// smtpConnection pairs a connection pool with the server config it was
// built from, so timeout and reconnect lookups always use the matching
// server even when some configured servers failed to connect.
type smtpConnection struct {
	server SmtpServer
	pool   *smtppool.Pool
}

// SmtpClients keeps one connection pool per configured server and picks
// them round robin for outgoing mails.
type SmtpClients struct {
	servers     SmtpServerList
	connections []*smtpConnection
	counter     uint64
}

func NewSmtpClients(config SmtpServerList) (*SmtpClients, error) {
	connections := initConnections(config)
	if len(connections) < 1 {
		return nil, errors.New("no smtp server connection in the pool")
	}
	return &SmtpClients{
		servers:     config,
		connections: connections,
	}, nil
}

func initConnections(serverList SmtpServerList) []*smtpConnection {
	connections := []*smtpConnection{}
	for _, server := range serverList.Servers {
		pool, err := connectToPool(server)
		if err != nil {
			slog.Error("error setting up connection pool", slog.String("error", err.Error()), slog.String("server", server.Address()))
			continue
		}
		connections = append(connections, &smtpConnection{server: server, pool: pool})
	}
	return connections
}

func connectToPool(server SmtpServer) (*smtppool.Pool, error) {
	auth := smtp.PlainAuth(
		"",
		server.AuthData.Username,
		server.AuthData.Password,
		server.Host,
	)
	if server.AuthData.Username == "" && server.AuthData.Password == "" {
		auth = nil
	}

	tlsOpts := &tls.Config{
		InsecureSkipVerify: server.InsecureSkipVerify,
		ServerName:         server.Host,
	}
	port, err := strconv.Atoi(server.Port)
	if err != nil {
		return nil, err
	}

	return smtppool.New(smtppool.Opt{
		Host:            server.Host,
		Port:            port,
		MaxConns:        server.Connections,
		IdleTimeout:     time.Duration(server.SendTimeout) * time.Second,
		PoolWaitTimeout: time.Duration(server.SendTimeout) * time.Second,
		TLSConfig:       tlsOpts,
		Auth:            auth,
	})
}

func (sc *SmtpClients) SendMail(
	to []string,
	subject string,
	htmlContent string,
	overrides *HeaderOverrides,
) error {
	if len(sc.connections) < 1 {
		return errors.New("no smtp servers connected")
	}

	index := int(atomic.AddUint64(&sc.counter, 1) % uint64(len(sc.connections)))
	conn := sc.connections[index]

	from := sc.servers.From
	sender := sc.servers.Sender
	replyTo := sc.servers.ReplyTo

	if overrides != nil {
		if overrides.From != "" {
			from = overrides.From
		}
		if overrides.Sender != "" {
			sender = overrides.Sender
		}
		if overrides.NoReplyTo {
			replyTo = []string{}
		} else if len(overrides.ReplyTo) > 0 {
			replyTo = overrides.ReplyTo
		}
	}

	e := smtppool.Email{
		To:      to,
		From:    from,
		Sender:  sender,
		ReplyTo: replyTo,
		Subject: subject,
		HTML:    []byte(htmlContent),
		Headers: textproto.MIMEHeader{},
	}
	err := conn.pool.Send(e)
	if err != nil {
		// close and try to reconnect
		slog.Error("error when trying to send email", slog.String("error", err.Error()))

		pool, errReconnect := connectToPool(conn.server)
		if errReconnect != nil {
			slog.Error("cannot reconnect pool", slog.String("error", errReconnect.Error()), slog.String("server", conn.server.Host))
		} else {
			conn.pool = pool
		}
	}
	return err
}
