package iostream

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tee(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Tee(strings.NewReader("x\ny"), &a, &b))
	assert.Equal(t, "x\ny\n", a.String())
	assert.Equal(t, a.String(), b.String())
}

func Test_Stream(t *testing.T) {
	var out, errs bytes.Buffer
	r := StdReaders{Stdout: strings.NewReader("1\n2\n"), Stderr: strings.NewReader("e\n")}
	r.Stream(&StdWriters{Stdout: &out, Stderr: &errs}).Wait()
	assert.Equal(t, "1\n2\n", out.String())
	assert.Equal(t, "e\n", errs.String())
}

func Test_LazyFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "logs", "rank-0")
	w := NewFileRedirector(name)
	_, err := os.Stat(name + ".stdout.log")
	assert.True(t, os.IsNotExist(err))
	_, err = w.Stdout.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, w.Stdout.(interface{ Close() error }).Close())
	bs, err := os.ReadFile(name + ".stdout.log")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(bs))
}
