// Command bb is a CLI client for the bdaybook service.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "bdaybook")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "bdaybook")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// ---- http plumbing ----

type client struct {
	base   string
	bearer string
	hc     *http.Client
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// do sends a request and decodes the JSON envelope, turning API failures
// into plain errors.
func (c *client) do(method, path string, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequest(method, strings.TrimRight(c.base, "/")+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("bad response (%s): %w", resp.Status, err)
	}
	if !env.Success {
		if env.Error != "" {
			return errors.New(env.Error)
		}
		return fmt.Errorf("request failed: %s", resp.Status)
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (c *client) doJSON(method, path string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(method, path, "application/json", bytes.NewReader(b), out)
}

// ---- dispatch ----

func usage() {
	fmt.Fprintln(os.Stderr, `usage: bb [-server URL] <command> [flags]

commands:
  register   create an account
  login      authenticate and cache an access token
  add        add a birthday record
  list       list all records
  upcoming   show today's, next and upcoming birthdays
  show       show one record by id
  update     change fields of a record
  del        delete a record`)
	os.Exit(2)
}

func main() {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	c := &client{base: *server, hc: &http.Client{Timeout: 30 * time.Second}}
	cmd, rest := args[0], args[1:]

	// everything except register/login needs a cached token
	switch cmd {
	case "register", "login":
	default:
		tok, err := loadToken()
		if err != nil {
			fatal(err)
		}
		c.bearer = tok
	}

	var err error
	switch cmd {
	case "register":
		err = cmdRegister(c, rest)
	case "login":
		err = cmdLogin(c, rest)
	case "add":
		err = cmdAdd(c, rest)
	case "list":
		err = cmdList(c, rest)
	case "upcoming":
		err = cmdUpcoming(c, rest)
	case "show":
		err = cmdShow(c, rest)
	case "update":
		err = cmdUpdate(c, rest)
	case "del":
		err = cmdDelete(c, rest)
	default:
		usage()
	}
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
