package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses configuration flags from args (usually os.Args[1:]).
//
// Flags:
//
//	-a server listen address in format [host]:[port]
//	-s sync server endpoint used by the client
//	-d account database DSN
//	-dir server collections folder
//	-col client collection file
//	-c/-config json file path with configs
//	-token-sign-key host key signing key
//	-token-issuer host key issuer name
//	-token-duration host key lifetime (e.g., "720h")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-u / -p client username and password
//	-sync-interval periodic client sync interval
//	-chunk-size rows per chunk
func ParseFlags(args []string) (*StructuredConfig, error) {
	var serverAddress NetAddress
	var endpoint string
	var databaseDSN string
	var collectionsDir string
	var collectionPath string
	var jsonConfigPath string
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var username, password string
	var syncInterval time.Duration
	var chunkSize int

	fs := flag.NewFlagSet("collection-sync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&endpoint, "s", "", "Sync server endpoint")
	fs.StringVar(&databaseDSN, "d", "", "Account database DSN")
	fs.StringVar(&collectionsDir, "dir", "", "Server collections folder")
	fs.StringVar(&collectionPath, "col", "", "Client collection file")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Host key signing key")
	fs.StringVar(&tokenIssuer, "token-issuer", "", "Host key issuer")
	fs.DurationVar(&tokenDuration, "token-duration", 0, "Host key lifetime (e.g., 720h)")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.StringVar(&username, "u", "", "Sync username")
	fs.StringVar(&password, "p", "", "Sync password")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval, 0 syncs once")
	fs.IntVar(&chunkSize, "chunk-size", 0, "Rows per chunk")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Collections: Collections{
				BaseDir: collectionsDir,
				Path:    collectionPath,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    endpoint,
			RequestTimeout: requestTimeout,
			Username:       username,
			Password:       password,
		},
		Sync: Sync{
			ChunkSize: chunkSize,
		},
		Workers: Workers{
			SyncInterval: syncInterval,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// It returns an empty string when neither Host nor Port are set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
