// Package profile stores named connection settings and resolves passwords.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/kobzarvs/qsql/internal/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type ConnectionOptions struct {
	Driver   string `json:"driver,omitempty"`
	Host     string `json:"host,omitempty"`
	Port     string `json:"port,omitempty"`
	DBName   string `json:"dbname"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
}

// CurrentUser is the login name used for default user and database names.
func CurrentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "postgres"
}

// WithDefaults fills unset fields the way psql does.
func (o ConnectionOptions) WithDefaults() ConnectionOptions {
	if o.Driver == "" {
		o.Driver = DriverPostgres
	}
	if o.Driver != DriverPostgres {
		return o
	}
	if o.Host == "" {
		o.Host = "localhost"
	}
	if o.Port == "" {
		o.Port = "5432"
	}
	if o.User == "" {
		o.User = CurrentUser()
	}
	if o.DBName == "" {
		o.DBName = o.User
	}
	return o
}

// DSN renders the options for the driver. For SQLite the database name is
// the file path.
func (o ConnectionOptions) DSN() string {
	if o.Driver == DriverSQLite {
		return o.DBName
	}
	parts := []string{
		"host=" + quoteValue(o.Host),
		"port=" + quoteValue(o.Port),
		"user=" + quoteValue(o.User),
		"dbname=" + quoteValue(o.DBName),
	}
	if o.Password != "" {
		parts = append(parts, "password="+quoteValue(o.Password))
	}
	return strings.Join(parts, " ")
}

func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

var ErrNotFound = errors.New("profile not found")

// NotFoundError carries close matches for a mistyped profile name.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("profile %q not found", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Store keeps one JSON file per profile.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultStore lives in the profiles directory under the config directory.
func DefaultStore() (*Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(dir, "profiles")), nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// List returns profile names in order, creating the directory on first use.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(s.dir, 0o700); err != nil {
			return nil, fmt.Errorf("create profiles directory %s: %w", s.dir, err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profiles directory %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) Load(name string) (ConnectionOptions, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return ConnectionOptions{}, s.notFound(name)
	}
	if err != nil {
		return ConnectionOptions{}, err
	}
	var opts ConnectionOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		return ConnectionOptions{}, fmt.Errorf("profile %s: %w", name, err)
	}
	return opts, nil
}

func (s *Store) notFound(name string) error {
	nfe := &NotFoundError{Name: name}
	names, err := s.List()
	if err != nil {
		return nfe
	}
	for i, m := range fuzzy.Find(name, names) {
		if i == 3 {
			break
		}
		nfe.Suggestions = append(nfe.Suggestions, m.Str)
	}
	return nfe
}

// Save writes the profile readable by the owner only, since it may hold a
// password.
func (s *Store) Save(name string, opts ConnectionOptions) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid profile name %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(name), data, 0o600)
}
