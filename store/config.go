// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

// configPrefix namespaces the config table (spec §4.I: primary key "key",
// "small scalars").
var configPrefix = []byte("config/")

func configKey(key string) []byte {
	return append(append([]byte(nil), configPrefix...), key...)
}

// SetConfig stores a small scalar config value under key.
func (t *Tx) SetConfig(key string, value string) error {
	return t.put(configKey(key), []byte(value))
}

// GetConfig reads a config value, returning ok=false if unset.
func GetConfig(r Reader, key string) (string, bool, error) {
	raw, ok, err := r.get(configKey(key))
	if err != nil || !ok {
		return "", ok, err
	}
	return string(raw), true, nil
}
