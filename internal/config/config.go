package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Pager modes accepted by the shell.pager option.
const (
	PagerAuto   = "auto"
	PagerAlways = "always"
	PagerNever  = "never"
)

type ShellOptions struct {
	Prompt       string `toml:"prompt"`
	History      bool   `toml:"history"`
	HistoryFile  string `toml:"history-file"`
	Pager        string `toml:"pager"`
	NullDisplay  string `toml:"null-display"`
	Highlight    bool   `toml:"highlight"`
	ClearOnStart bool   `toml:"clear-on-start"`
}

// InputOptions extends the built-in escape sequence tables. CtrlArrows is
// keyed by direction: "left", "right", "up" or "down".
type InputOptions struct {
	CtrlArrows map[string][]string `toml:"ctrl-arrows"`
}

type LogOptions struct {
	Debug bool   `toml:"debug"`
	File  string `toml:"file"`
}

type Theme struct {
	Theme             string `toml:"theme"`
	Prompt            string `toml:"prompt"`
	Error             string `toml:"error"`
	PagerForeground   string `toml:"pager-foreground"`
	PagerBackground   string `toml:"pager-background"`
	SyntaxKeyword     string `toml:"syntax-keyword"`
	SyntaxString      string `toml:"syntax-string"`
	SyntaxComment     string `toml:"syntax-comment"`
	SyntaxType        string `toml:"syntax-type"`
	SyntaxFunction    string `toml:"syntax-function"`
	SyntaxNumber      string `toml:"syntax-number"`
	SyntaxConstant    string `toml:"syntax-constant"`
	SyntaxOperator    string `toml:"syntax-operator"`
	SyntaxPunctuation string `toml:"syntax-punctuation"`
	SyntaxField       string `toml:"syntax-field"`
	SyntaxVariable    string `toml:"syntax-variable"`
}

type Config struct {
	Shell ShellOptions `toml:"shell"`
	Input InputOptions `toml:"input"`
	Log   LogOptions   `toml:"log"`
	Theme Theme        `toml:"theme"`
}

func Default() Config {
	return Config{
		Shell: ShellOptions{
			Prompt:      "$> ",
			History:     true,
			Pager:       PagerAuto,
			NullDisplay: "None",
			Highlight:   true,
		},
		Input: InputOptions{
			CtrlArrows: map[string][]string{},
		},
		Theme: Theme{
			Prompt:            "#59C2FF",
			Error:             "#FF3333",
			PagerForeground:   "#B3B1AD",
			PagerBackground:   "default",
			SyntaxKeyword:     "#FFA759",
			SyntaxString:      "#BAE67E",
			SyntaxComment:     "#5C6773",
			SyntaxType:        "#5CCFE6",
			SyntaxFunction:    "#FFD173",
			SyntaxNumber:      "#D4BFFF",
			SyntaxConstant:    "#FFDD8E",
			SyntaxOperator:    "#F29668",
			SyntaxPunctuation: "#C0C0C0",
			SyntaxField:       "#E6B673",
			SyntaxVariable:    "#B3B1AD",
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	md, err := toml.Decode(string(data), &userCfg)
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	setString(&cfg.Shell.Prompt, userCfg.Shell.Prompt)
	setString(&cfg.Shell.HistoryFile, userCfg.Shell.HistoryFile)
	setString(&cfg.Shell.Pager, userCfg.Shell.Pager)
	setString(&cfg.Shell.NullDisplay, userCfg.Shell.NullDisplay)
	// Booleans that default to true can only be turned off when the key is present.
	if md.IsDefined("shell", "history") {
		cfg.Shell.History = userCfg.Shell.History
	}
	if md.IsDefined("shell", "highlight") {
		cfg.Shell.Highlight = userCfg.Shell.Highlight
	}
	if userCfg.Shell.ClearOnStart {
		cfg.Shell.ClearOnStart = true
	}
	for dir, seqs := range userCfg.Input.CtrlArrows {
		cfg.Input.CtrlArrows[dir] = append(cfg.Input.CtrlArrows[dir], seqs...)
	}
	if userCfg.Log.Debug {
		cfg.Log.Debug = true
	}
	setString(&cfg.Log.File, userCfg.Log.File)

	setString(&cfg.Theme.Theme, userCfg.Theme.Theme)
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports option values the shell cannot act on.
func (c Config) Validate() error {
	switch c.Shell.Pager {
	case PagerAuto, PagerAlways, PagerNever:
	default:
		return fmt.Errorf("shell.pager: unknown mode %q", c.Shell.Pager)
	}
	for dir := range c.Input.CtrlArrows {
		switch dir {
		case "left", "right", "up", "down":
		default:
			return fmt.Errorf("input.ctrl-arrows: unknown direction %q", dir)
		}
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeTheme(dst *Theme, src Theme) {
	setString(&dst.Prompt, src.Prompt)
	setString(&dst.Error, src.Error)
	setString(&dst.PagerForeground, src.PagerForeground)
	setString(&dst.PagerBackground, src.PagerBackground)
	setString(&dst.SyntaxKeyword, src.SyntaxKeyword)
	setString(&dst.SyntaxString, src.SyntaxString)
	setString(&dst.SyntaxComment, src.SyntaxComment)
	setString(&dst.SyntaxType, src.SyntaxType)
	setString(&dst.SyntaxFunction, src.SyntaxFunction)
	setString(&dst.SyntaxNumber, src.SyntaxNumber)
	setString(&dst.SyntaxConstant, src.SyntaxConstant)
	setString(&dst.SyntaxOperator, src.SyntaxOperator)
	setString(&dst.SyntaxPunctuation, src.SyntaxPunctuation)
	setString(&dst.SyntaxField, src.SyntaxField)
	setString(&dst.SyntaxVariable, src.SyntaxVariable)
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

// LoadTheme reads a named theme. Both a flat file and one wrapped in a
// [theme] table are accepted.
func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var wrap struct {
		Theme *Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err == nil && wrap.Theme != nil {
		return *wrap.Theme, nil
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err != nil {
		return Theme{}, fmt.Errorf("theme %s: %w", name, err)
	}
	return t, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QSQL_CONFIG_HOME"); v != "" {
		return filepath.Clean(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qsql"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qsql"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// HistoryPath resolves the history file, honouring shell.history-file.
func (c Config) HistoryPath() (string, error) {
	if c.Shell.HistoryFile != "" {
		return c.Shell.HistoryFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}
