package profile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kobzarvs/qsql/internal/logger"
)

var ErrInsecurePassFile = errors.New("password file is accessible by group or others")

// PassFilePath returns $PGPASSFILE or ~/.pgpass.
func PassFilePath() (string, error) {
	if v := os.Getenv("PGPASSFILE"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pgpass"), nil
}

// FillPassword looks the password up in the password file when none is set.
// Problems with the file are logged and leave opts unchanged.
func FillPassword(opts ConnectionOptions) ConnectionOptions {
	if opts.Password != "" || opts.Driver == DriverSQLite {
		return opts
	}
	path, err := PassFilePath()
	if err != nil {
		return opts
	}
	pw, ok, err := LookupPassword(path, opts.Host, opts.Port, opts.DBName, opts.User)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("ignoring password file", "path", path, "err", err)
		}
		return opts
	}
	if ok {
		opts.Password = pw
	}
	return opts
}

// LookupPassword returns the password of the first entry matching the
// connection. Fields may be "*". The file is refused unless only its owner
// can read it.
func LookupPassword(path, host, port, dbname, user string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", false, err
	}
	if info.Mode().Perm()&0o077 != 0 {
		return "", false, fmt.Errorf("%s: %w", path, ErrInsecurePassFile)
	}

	want := [4]string{host, port, dbname, user}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := splitPassLine(line)
		if len(fields) != 5 {
			logger.Debug("skipping malformed password file line", "path", path, "line", lineNo)
			continue
		}
		match := true
		for i, w := range want {
			if fields[i] != "*" && fields[i] != w {
				match = false
				break
			}
		}
		if match {
			return fields[4], true, nil
		}
	}
	return "", false, scanner.Err()
}

// splitPassLine splits on ':' honouring "\:" and "\\" escapes.
func splitPassLine(line string) []string {
	var fields []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, cur.String())
}
