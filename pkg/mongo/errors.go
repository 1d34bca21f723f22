package mongo

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	ErrFailedToConnect   = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed = errors.New("mongo healthcheck failed")
)

const duplicateKeyCode = 11000

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// IsNotFound reports whether err means a single-document query matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// DuplicateKeyFields returns the fields of the unique index a write collided
// with, read from the server's keyPattern. Servers that omit keyPattern are
// covered by parsing the "dup key: { field: ... }" part of the message, which
// yields the first field only. The index name plays no part.
func DuplicateKeyFields(err error) []string {
	var we mongo.WriteException
	if !errors.As(err, &we) {
		return nil
	}
	var fields []string
	for _, e := range we.WriteErrors {
		if e.Code != duplicateKeyCode {
			continue
		}
		if kp, lerr := e.Raw.LookupErr("keyPattern"); lerr == nil {
			if doc, ok := kp.DocumentOK(); ok {
				if elems, derr := doc.Elements(); derr == nil {
					for _, el := range elems {
						fields = append(fields, el.Key())
					}
					continue
				}
			}
		}
		if f := dupKeyField(e.Message); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func dupKeyField(msg string) string {
	_, rest, ok := strings.Cut(msg, "dup key: {")
	if !ok {
		return ""
	}
	field, _, ok := strings.Cut(rest, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(field)
}
