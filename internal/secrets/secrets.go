// Package secrets resolves credentials that the config file refers to
// instead of containing: ${VAR} references and mounted secret files such
// as /run/secrets/db_password.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/logger"
)

// maxSecretFileSize limits secret file reads. Secrets are tokens and
// passwords, not documents.
const maxSecretFileSize = 64 * 1024

// ExpandString resolves ${VAR} and ${VAR:-default} references.
//
//	"literal"             -> "literal"
//	"${DB_PASSWORD}"      -> value of DB_PASSWORD
//	"${DB_PASSWORD:-dev}" -> value of DB_PASSWORD, or "dev" when unset
//
// A reference without a default to an unset variable is an error. Strings
// without "${" are returned unchanged, so literal passwords may contain "$".
func ExpandString(s string) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}

	var missing []string
	expanded := os.Expand(s, func(key string) string {
		name, fallback, hasFallback := strings.Cut(key, ":-")
		if value := os.Getenv(name); value != "" {
			return value
		}
		if hasFallback {
			return fallback
		}
		missing = append(missing, name)
		return ""
	})

	if len(missing) > 0 {
		return "", secretError(fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", ")),
			errors.CategoryConfiguration)
	}
	return expanded, nil
}

// ReadFile reads a secret file, dropping the trailing newline. Files that
// group or other can read are accepted with a warning.
func ReadFile(path string) (string, error) {
	if path == "" {
		return "", secretError(fmt.Errorf("secret file path is empty"), errors.CategoryConfiguration)
	}
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", secretError(fmt.Errorf("secret file %s: %w", cleanPath, err), errors.CategoryFileIO)
	}
	if !info.Mode().IsRegular() {
		return "", secretError(fmt.Errorf("secret path is not a regular file: %s", cleanPath), errors.CategoryFileIO)
	}
	if info.Size() > maxSecretFileSize {
		return "", secretError(fmt.Errorf("secret file too large (max %d bytes): %s", maxSecretFileSize, cleanPath),
			errors.CategoryFileIO)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Global().Module("secrets").Warn("secret file is readable by group or other",
			logger.String("path", cleanPath),
			logger.String("mode", fmt.Sprintf("%04o", perm)))
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", secretError(fmt.Errorf("read secret file %s: %w", cleanPath, err), errors.CategoryFileIO)
	}
	secret := strings.TrimRight(string(data), "\r\n")
	if secret == "" {
		return "", secretError(fmt.Errorf("secret file is empty: %s", cleanPath), errors.CategoryFileIO)
	}
	return secret, nil
}

// Resolve returns the secret from filePath when set, else value with
// environment references expanded.
func Resolve(filePath, value string) (string, error) {
	if filePath != "" {
		return ReadFile(filePath)
	}
	return ExpandString(value)
}

func secretError(err error, category errors.ErrorCategory) error {
	return errors.New(err).
		Component("secrets").
		Category(category).
		Build()
}
