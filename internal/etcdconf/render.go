package etcdconf

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const header = "# Managed by etcdnode. Local changes are overwritten on the next run.\n"

// Render encodes p as an etcd configuration file. Output is stable for
// equal inputs, so callers can compare it with the file on disk.
func Render(p Params) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("failed to encode etcd config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode etcd config: %w", err)
	}
	return buf.Bytes(), nil
}
