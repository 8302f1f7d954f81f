package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Bucket credential keys. Each is read from the process environment first,
// then from ~/.primview/.env.
const (
	EnvS3AccessKey = "PRIMVIEW_S3_ACCESS_KEY"
	EnvS3SecretKey = "PRIMVIEW_S3_SECRET_KEY"
)

// ErrPartialCredentials is returned when only one of the two bucket keys
// resolves to a value.
var ErrPartialCredentials = errors.New(EnvS3AccessKey + " and " + EnvS3SecretKey + " must be set together")

// Credentials are the S3 bucket keys. The zero value means anonymous access.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// Anonymous reports whether no keys are configured.
func (c Credentials) Anonymous() bool {
	return c.AccessKey == "" && c.SecretKey == ""
}

// DotEnvPath returns ~/.primview/.env.
func DotEnvPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".env"), nil
}

// S3Credentials resolves both bucket keys. The .env file is read at most once
// and only when the environment leaves a key unset.
func S3Credentials() (Credentials, error) {
	var file map[string]string
	lookup := func(key string) (string, error) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v, nil
		}
		if file == nil {
			p, err := DotEnvPath()
			if err != nil {
				return "", err
			}
			if file, err = readCredentialFile(p); err != nil {
				return "", err
			}
		}
		return file[key], nil
	}

	var c Credentials
	var err error
	if c.AccessKey, err = lookup(EnvS3AccessKey); err != nil {
		return Credentials{}, err
	}
	if c.SecretKey, err = lookup(EnvS3SecretKey); err != nil {
		return Credentials{}, err
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return Credentials{}, ErrPartialCredentials
	}
	return c, nil
}

// readCredentialFile returns the credential keys found in path. A missing
// file yields an empty map. Other keys, comments and malformed lines are
// skipped; an "export " prefix and quoted values are accepted.
func readCredentialFile(path string) (map[string]string, error) {
	out := map[string]string{}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, val, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		key = strings.TrimSpace(key)
		if !ok || (key != EnvS3AccessKey && key != EnvS3SecretKey) {
			continue
		}
		v, err := unquote(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %s: %w", path, n, key, err)
		}
		out[key] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return out, nil
}

func unquote(v string) (string, error) {
	if len(v) < 2 {
		return v, nil
	}
	switch {
	case v[0] == '"' && v[len(v)-1] == '"':
		return strconv.Unquote(v)
	case v[0] == '\'' && v[len(v)-1] == '\'':
		return v[1 : len(v)-1], nil
	}
	return v, nil
}

// EnsureDotEnvTemplate creates ~/.primview/.env with empty credential keys.
// An existing file is left alone.
func EnsureDotEnvTemplate() error {
	p, err := DotEnvPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", p, err)
	}
	var b strings.Builder
	b.WriteString("# S3 bucket keys for assets.s3 in primview.yaml.\n")
	b.WriteString("# Leave both empty for anonymous access. The environment wins.\n")
	for _, k := range []string{EnvS3AccessKey, EnvS3SecretKey} {
		b.WriteString(k + "=\n")
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %s: %w", p, err)
	}
	return f.Close()
}
