package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const minSecretLength = 32

// Manager writes cookies with shared defaults and signs values on request.
type Manager struct {
	secrets  [][]byte
	defaults Options
	now      func() time.Time
}

// New validates cfg and returns a Manager. Every secret must be at least 32
// characters.
func New(cfg Config) (*Manager, error) {
	var secrets [][]byte
	for i, s := range cfg.Secrets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
		secrets = append(secrets, []byte(s))
	}
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	sameSite, err := parseSameSite(cfg.SameSite)
	if err != nil {
		return nil, err
	}

	return &Manager{
		secrets: secrets,
		defaults: Options{
			Path:     "/",
			Domain:   cfg.Domain,
			Secure:   cfg.Secure,
			HttpOnly: true,
			SameSite: sameSite,
		},
		now: time.Now,
	}, nil
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	o := apply(m.defaults, opts)
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	}
	if o.MaxAge > 0 {
		c.MaxAge = int(o.MaxAge / time.Second)
		c.Expires = m.now().Add(o.MaxAge).UTC()
	}
	http.SetCookie(w, c)
}

// Get returns the raw cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete expires the cookie on the client.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	o := apply(m.defaults, opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	})
}

// SetSigned writes value with an HMAC bound to name. When the options carry a
// MaxAge, the same deadline is embedded in the signed payload.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) {
	o := apply(m.defaults, opts)
	var exp int64
	if o.MaxAge > 0 {
		exp = m.now().Add(o.MaxAge).Unix()
	}
	m.Set(w, name, m.sign(name, value, exp), opts...)
}

// GetSigned returns the verified value of a cookie written by SetSigned.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.verify(name, raw)
}

// payload: base64(value) "." exp "." base64(mac)
func (m *Manager) sign(name, value string, exp int64) string {
	expStr := strconv.FormatInt(exp, 10)
	sig := mac(m.secrets[0], name, value, expStr)
	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "." + expStr + "." +
		base64.RawURLEncoding.EncodeToString(sig)
}

func (m *Manager) verify(name, raw string) (string, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return "", ErrInvalidFormat
	}
	value, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidFormat
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrInvalidFormat
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, secret := range m.secrets {
		if hmac.Equal(sig, mac(secret, name, string(value), parts[1])) {
			if exp > 0 && m.now().Unix() >= exp {
				return "", ErrExpired
			}
			return string(value), nil
		}
	}
	return "", ErrInvalidSignature
}

func mac(secret []byte, name, value, exp string) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(value))
	h.Write([]byte{0})
	h.Write([]byte(exp))
	return h.Sum(nil)
}
