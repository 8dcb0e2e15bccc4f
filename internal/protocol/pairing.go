// ABOUTME: Pairing string handling for QR codes and manual entry
// ABOUTME: Builds and parses austream://ip:port?pin=..&name=.. URLs
package protocol

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// DefaultAudioPort is the default audio/control port. The time socket binds
// the next port up.
const DefaultAudioPort = 5004

// Pairing holds everything a receiver needs to join a sender.
type Pairing struct {
	Host string
	Port int
	PIN  string // may be empty; user enters it manually then
	Name string // sender host name, informational
}

// String renders the pairing URL shown next to the sender's PIN.
func (p Pairing) String() string {
	u := url.URL{
		Scheme: "austream",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
	}
	q := u.Query()
	if p.PIN != "" {
		q.Set("pin", p.PIN)
	}
	if p.Name != "" {
		q.Set("name", p.Name)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ParsePairing parses an austream:// URL. The pin parameter is optional and
// a missing port falls back to DefaultAudioPort.
func ParsePairing(s string) (Pairing, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Pairing{}, fmt.Errorf("parse pairing url: %w", err)
	}
	if u.Scheme != "austream" {
		return Pairing{}, fmt.Errorf("unexpected scheme %q", u.Scheme)
	}

	p := Pairing{
		Host: u.Hostname(),
		Port: DefaultAudioPort,
		PIN:  u.Query().Get("pin"),
		Name: u.Query().Get("name"),
	}
	if p.Host == "" {
		return Pairing{}, fmt.Errorf("pairing url missing host")
	}
	if ps := u.Port(); ps != "" {
		port, err := strconv.Atoi(ps)
		if err != nil || port <= 0 || port > 65535 {
			return Pairing{}, fmt.Errorf("invalid port %q", ps)
		}
		p.Port = port
	}
	return p, nil
}
