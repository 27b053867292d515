package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Store = (*Memory)(nil)
	_ Store = (*File)(nil)
	_ Store = (*SQLite)(nil)
)

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemory()
		},
		"file": func(t *testing.T) Store {
			s, err := OpenFile(filepath.Join(t.TempDir(), "prefs.json"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "prefs.db"), zerolog.Nop())
			require.NoError(t, err)
			return s
		},
		"sqlite-memory": func(t *testing.T) Store {
			s, err := OpenSQLite("", zerolog.Nop())
			require.NoError(t, err)
			return s
		},
	}
}

func TestStoreContract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			_, ok, err := s.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set("lastCameraState", []byte(`{"radius":2}`)))
			v, ok, err := s.Get("lastCameraState")
			require.NoError(t, err)
			require.True(t, ok)
			assert.JSONEq(t, `{"radius":2}`, string(v))

			require.NoError(t, s.Set("lastCameraState", []byte(`{"radius":3}`)))
			v, _, err = s.Get("lastCameraState")
			require.NoError(t, err)
			assert.JSONEq(t, `{"radius":3}`, string(v))

			require.NoError(t, s.Delete("lastCameraState"))
			_, ok, err = s.Get("lastCameraState")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, s.Delete("never-set"), "deleting a missing key is a no-op")
		})
	}
}

func TestStoreEmptyKeyMatchesNothing(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			require.NoError(t, s.Set("cameraPresets", []byte(`[]`)))
			require.NoError(t, s.Set("autoFitEnabled", []byte(`true`)))

			_, ok, err := s.Get("")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Delete(""))
			for _, key := range []string{"cameraPresets", "autoFitEnabled"} {
				_, ok, err := s.Get(key)
				require.NoError(t, err)
				assert.True(t, ok, "%s survives deleting the empty key", key)
			}
		})
	}
}

func TestStoreClosed(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			require.NoError(t, s.Close())

			_, _, err := s.Get("k")
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, s.Set("k", []byte("true")), ErrClosed)
			assert.ErrorIs(t, s.Delete("k"), ErrClosed)
		})
	}
}

func TestStoreConcurrentWrites(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			var wg sync.WaitGroup
			for i := range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, s.Set(fmt.Sprintf("key-%d", i), []byte(fmt.Sprint(i))))
				}()
			}
			wg.Wait()

			for i := range 16 {
				v, ok, err := s.Get(fmt.Sprintf("key-%d", i))
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, fmt.Sprint(i), string(v))
			}
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	s := NewMemory()
	buf := []byte("true")
	require.NoError(t, s.Set("flag", buf))
	buf[0] = 'X'

	v, _, err := s.Get("flag")
	require.NoError(t, err)
	assert.Equal(t, "true", string(v))
}

func TestFilePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")

	s, err := OpenFile(path)
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "file is created lazily")

	require.NoError(t, s.Set("saveCameraPosition", []byte("true")))
	require.NoError(t, s.Close())

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get("saveCameraPosition")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", string(v))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestFileRejectsInvalidJSON(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)
	assert.Error(t, s.Set("k", []byte("{not json")))

	_, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o600))

	_, err := OpenFile(path)
	assert.Error(t, err)
}

func TestSQLitePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")

	s, err := OpenSQLite(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Set("cameraPresets", []byte(`[]`)))
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close(), "second close is a no-op")

	reopened, err := OpenSQLite(path, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get("cameraPresets")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(v))
}

func TestSQLiteMemoryStoresAreIsolated(t *testing.T) {
	a, err := OpenSQLite("", zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()
	b, err := OpenSQLite("", zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Set("k", []byte("1")))
	_, ok, err := b.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr bool
	}{
		{"memory", Config{Type: TypeMemory}, &Memory{}, false},
		{"file", Config{Type: TypeFile, Path: filepath.Join(dir, "p.json")}, &File{}, false},
		{"default is file", Config{Path: filepath.Join(dir, "q.json")}, &File{}, false},
		{"sqlite", Config{Type: TypeSQLite, Path: filepath.Join(dir, "p.db"), Logger: zerolog.Nop()}, &SQLite{}, false},
		{"file without path", Config{Type: TypeFile}, nil, true},
		{"unknown", Config{Type: "redis"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("SQLite")
	require.NoError(t, err)
	assert.Equal(t, TypeSQLite, typ)

	typ, err = ParseType("")
	require.NoError(t, err)
	assert.Equal(t, TypeFile, typ)

	_, err = ParseType("etcd")
	assert.Error(t, err)
}
