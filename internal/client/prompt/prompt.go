// Package prompt reads interactive input for the client shell.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/ContentAI/internal/client/api"
)

// Prompter asks questions on out and reads answers line by line from in.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Line prints label and returns the trimmed answer. ok is false once input is
// exhausted.
func (p *Prompter) Line(label string) (answer string, ok bool) {
	fmt.Fprint(p.out, label)
	if !p.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.scanner.Text()), true
}

// Credentials asks for email and password.
func (p *Prompter) Credentials() (api.Credentials, error) {
	email, ok := p.Line("Email: ")
	if !ok || email == "" {
		return api.Credentials{}, fmt.Errorf("email is required")
	}
	password, ok := p.Line("Password: ")
	if !ok || password == "" {
		return api.Credentials{}, fmt.Errorf("password is required")
	}
	return api.Credentials{Email: email, Password: password}, nil
}

// Signup asks for the registration fields. Name is optional.
func (p *Prompter) Signup() (api.SignupRequest, error) {
	creds, err := p.Credentials()
	if err != nil {
		return api.SignupRequest{}, err
	}
	name, _ := p.Line("Name (optional): ")
	return api.SignupRequest{Email: creds.Email, Password: creds.Password, Name: name}, nil
}

// Generate asks for a generation request. Only the niche is required; an
// unparsable idea count is left to the backend default.
func (p *Prompter) Generate(lang string) (api.GenerateRequest, error) {
	niche, ok := p.Line("Niche: ")
	if !ok || niche == "" {
		return api.GenerateRequest{}, fmt.Errorf("niche is required")
	}
	req := api.GenerateRequest{Niche: niche, Lang: lang}
	req.Audience, _ = p.Line("Audience (optional): ")
	req.Platform, _ = p.Line("Platform (optional): ")
	req.Style, _ = p.Line("Style (optional): ")
	if count, _ := p.Line("Number of ideas (optional): "); count != "" {
		if n, err := strconv.Atoi(count); err == nil && n > 0 {
			req.IdeaCount = n
		} else {
			fmt.Fprintf(p.out, "Ignoring invalid number %q\n", count)
		}
	}
	return req, nil
}
