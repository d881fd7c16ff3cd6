// Package attachments guarda los blobs de adjuntos en disco usando diskv.
// Las referencias (id, nombre, tamaño) viven en el evento; acá solo bytes.
package attachments

import (
	"context"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

type Store struct {
	d *diskv.Diskv
}

// NewStore crea el store sobre basePath. Las keys son "<eventID>/<attID>";
// el transform reparte por evento para no amontonar todo en un directorio.
func NewStore(basePath string) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      8 << 20, // 8MB
		}),
	}
}

func (s *Store) Put(_ context.Context, key string, data []byte) error {
	return s.d.Write(key, data)
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	return s.d.Read(key)
}

func keyToPath(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKey(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return pk.FileName
	}
	return strings.Join(pk.Path, "/") + "/" + pk.FileName
}
