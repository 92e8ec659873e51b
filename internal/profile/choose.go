package profile

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

const createNew = "\x00new"

// Choose asks which profile to use, offering to create one. preferred is
// preselected when it exists. The chosen profile name is returned with its
// options.
func (s *Store) Choose(preferred string) (string, ConnectionOptions, error) {
	names, err := s.List()
	if err != nil {
		return "", ConnectionOptions{}, err
	}

	choice := createNew
	opts := make([]huh.Option[string], 0, len(names)+1)
	opts = append(opts, huh.NewOption("Create new profile", createNew))
	for _, n := range names {
		opts = append(opts, huh.NewOption(n, n))
		if n == preferred {
			choice = n
		}
	}

	if len(names) > 0 {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Choose your profile").
					Options(opts...).
					Value(&choice),
			),
		)
		if err := form.Run(); err != nil {
			return "", ConnectionOptions{}, err
		}
	}

	if choice != createNew {
		c, err := s.Load(choice)
		return choice, c, err
	}
	return s.Create()
}

// Create prompts for a new profile, saves it and returns it.
func (s *Store) Create() (string, ConnectionOptions, error) {
	def := ConnectionOptions{}.WithDefaults()
	var name string
	c := def

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Profile name").
				Description(".json is added automatically").
				Value(&name).
				Validate(validateName),
			huh.NewSelect[string]().
				Title("Driver").
				Options(
					huh.NewOption("PostgreSQL", DriverPostgres),
					huh.NewOption("SQLite", DriverSQLite),
				).
				Value(&c.Driver),
		),
		huh.NewGroup(
			huh.NewInput().Title("Host").Value(&c.Host),
			huh.NewInput().Title("Port").Value(&c.Port).Validate(validatePort),
			huh.NewInput().Title("Database name").Description("a file path for SQLite").Value(&c.DBName),
			huh.NewInput().Title("User").Value(&c.User),
		),
	)
	if err := form.Run(); err != nil {
		return "", ConnectionOptions{}, err
	}

	c = trimOptions(c, def)
	name = strings.TrimSpace(name)
	if err := s.Save(name, c); err != nil {
		return "", ConnectionOptions{}, err
	}
	return name, c, nil
}

// trimOptions falls back to def for fields left blank and drops server
// fields that a SQLite profile has no use for.
func trimOptions(c, def ConnectionOptions) ConnectionOptions {
	c.Host = orDefault(c.Host, def.Host)
	c.Port = orDefault(c.Port, def.Port)
	c.User = orDefault(c.User, def.User)
	c.DBName = orDefault(c.DBName, def.DBName)
	if c.Driver == DriverSQLite {
		c.Host, c.Port, c.User = "", "", ""
	}
	return c
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func validateName(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errors.New("a name is required")
	}
	if strings.ContainsAny(v, `/\`) {
		return errors.New("name cannot contain path separators")
	}
	return nil
}

func validatePort(v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	if p, err := strconv.Atoi(v); err != nil || p <= 0 || p > 65535 {
		return errors.New("port must be a number between 1 and 65535")
	}
	return nil
}
