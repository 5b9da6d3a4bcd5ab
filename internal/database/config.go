package database

import (
	"fmt"
	"strconv"

	"github.com/koustreak/warehouser/internal/dialect"
)

// Config describes how to reach one database. It holds no connection.
//
// Every field is fixed at construction except the target database, which
// SetDatabase may repoint. Config is not safe for concurrent SetDatabase.
type Config struct {
	dialect  dialect.Dialect
	host     string
	port     string
	user     string
	password string
	database string

	// noLogin forces an empty login fragment (embedded file engines).
	noLogin bool
}

// Option customises New.
type Option func(*Config)

// WithHost sets the server host. An empty host keeps the dialect default.
func WithHost(host string) Option {
	return func(c *Config) {
		c.host = host
	}
}

// WithPort sets the server port. An empty port keeps the dialect default.
func WithPort(port string) Option {
	return func(c *Config) {
		c.port = port
	}
}

// WithPortNumber sets the server port from a number. Zero keeps the default.
func WithPortNumber(port int) Option {
	return func(c *Config) {
		if port == 0 {
			c.port = ""
			return
		}
		c.port = strconv.Itoa(port)
	}
}

// New builds a Config for d. Host and port fall back to the dialect
// defaults when not supplied. user, password and database are stored as
// given; their format is the caller's business.
func New(d dialect.Dialect, database, user, password string, opts ...Option) (*Config, error) {
	if !d.Valid() {
		_, err := dialect.Parse(string(d))
		return nil, err
	}

	c := &Config{
		dialect:  d,
		user:     user,
		password: password,
		database: database,
	}
	for _, opt := range opts {
		opt(c)
	}

	if d == dialect.SQLite {
		c.host, c.port = "", ""
		return c, nil
	}

	if c.host == "" {
		c.host, _ = dialect.DefaultHost(d)
	}
	if c.port == "" {
		c.port, _ = dialect.DefaultPort(d)
	}
	return c, nil
}

// NewSQLite builds a Config for the embedded file engine at path.
func NewSQLite(path string) *Config {
	return &Config{
		dialect:  dialect.SQLite,
		database: path,
		noLogin:  true,
	}
}

func (c *Config) Dialect() dialect.Dialect { return c.dialect }
func (c *Config) Host() string             { return c.host }
func (c *Config) Port() string             { return c.port }
func (c *Config) User() string             { return c.user }
func (c *Config) Password() string         { return c.password }
func (c *Config) Database() string         { return c.database }

// SetDatabase repoints the config at another database (or file path).
func (c *Config) SetDatabase(name string) {
	c.database = name
}

// LoginFragment returns "user:password@host:port", or "" for sqlite.
func (c *Config) LoginFragment() string {
	if c.noLogin || c.dialect == dialect.SQLite {
		return ""
	}
	return fmt.Sprintf("%s:%s@%s:%s", c.user, c.password, c.host, c.port)
}

// URI returns the connection URI for the stored database.
func (c *Config) URI() string {
	return c.URIFor("")
}

// URIFor returns the connection URI for database, falling back to the
// stored database when database is empty.
//
// For sqlite the login fragment is empty, so a relative path p yields
// "sqlite:///p" and an empty database yields "sqlite://".
func (c *Config) URIFor(database string) string {
	if database == "" {
		database = c.database
	}
	return makeURI(c.dialect, c.LoginFragment(), database)
}

// Params returns host, port, user and password.
func (c *Config) Params() (host, port, user, password string) {
	return c.host, c.port, c.user, c.password
}

// String is meant for diagnostics only. It includes the password.
func (c *Config) String() string {
	return fmt.Sprintf(`Config[%s:"%s"]`, c.dialect, c.URI())
}

func makeURI(d dialect.Dialect, login, database string) string {
	// d is validated at construction
	scheme, _ := dialect.URIScheme(d)
	suffix := ""
	if database != "" {
		suffix = "/" + database
	}
	return scheme + "://" + login + suffix
}
