package entities

import (
	"encoding/json"
	"time"
	"unicode/utf8"
)

// Metadata guarda los atributos lstat de un archivo candidato.
type Metadata struct {
	Mode  uint32    `json:"st_mode" yaml:"st_mode"`
	Inode uint64    `json:"st_ino" yaml:"st_ino"`
	Nlink uint64    `json:"st_nlink" yaml:"st_nlink"`
	UID   uint32    `json:"st_uid" yaml:"st_uid"`
	GID   uint32    `json:"st_gid" yaml:"st_gid"`
	Size  int64     `json:"st_size" yaml:"st_size"`
	Atime time.Time `json:"st_atime" yaml:"st_atime"`
	Mtime time.Time `json:"st_mtime" yaml:"st_mtime"`
	Ctime time.Time `json:"st_ctime" yaml:"st_ctime"`
}

// FileRecord representa una ruta candidata que recorre el pipeline.
// Meta es nil si falló el probe o la ruta es un symlink.
// Un Digest vacío significa que no se pudo leer el contenido.
type FileRecord struct {
	Path   string    `json:"path" yaml:"path"`
	Meta   *Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Digest string    `json:"hash,omitempty" yaml:"hash,omitempty"`
}

// HasMeta indica si se obtuvieron metadatos.
func (r *FileRecord) HasMeta() bool {
	return r.Meta != nil
}

// HasDigest indica si se calculó el digest.
func (r *FileRecord) HasDigest() bool {
	return r.Digest != ""
}

// MarshalJSON añade path_raw, los bytes exactos de la ruta, cuando Path no es
// UTF-8 válido. encoding/json reemplazaría los bytes inválidos en "path".
func (r FileRecord) MarshalJSON() ([]byte, error) {
	type plain FileRecord
	out := struct {
		plain
		RawPath []byte `json:"path_raw,omitempty"`
	}{plain: plain(r)}
	if !utf8.ValidString(r.Path) {
		out.RawPath = []byte(r.Path)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restaura Path desde path_raw si existe.
func (r *FileRecord) UnmarshalJSON(data []byte) error {
	type plain FileRecord
	var in struct {
		plain
		RawPath []byte `json:"path_raw"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = FileRecord(in.plain)
	if in.RawPath != nil {
		r.Path = string(in.RawPath)
	}
	return nil
}

// GroupKey es la clave compuesta de agrupación. Size forma parte de la clave
// como resguardo ante colisiones de digest.
type GroupKey struct {
	Digest string
	Size   int64
}

// DuplicateGroup representa un conjunto de archivos con la misma GroupKey.
type DuplicateGroup struct {
	Digest      string        `json:"hash" yaml:"hash"`
	Size        int64         `json:"st_size" yaml:"st_size"`
	Count       int64         `json:"count" yaml:"count"`
	WastedSpace int64         `json:"wasted_space" yaml:"wasted_space"`
	Members     []*FileRecord `json:"members" yaml:"members"`
}

// Key devuelve la clave del grupo.
func (g *DuplicateGroup) Key() GroupKey {
	return GroupKey{Digest: g.Digest, Size: g.Size}
}

// Add agrega un miembro al grupo
func (g *DuplicateGroup) Add(r *FileRecord) {
	g.Members = append(g.Members, r)
	g.Count++
}

// Representative es el miembro que se reporta en la columna "name".
func (g *DuplicateGroup) Representative() *FileRecord {
	if len(g.Members) == 0 {
		return nil
	}
	return g.Members[0]
}

// Paths devuelve las rutas en el orden del grupo.
func (g *DuplicateGroup) Paths() []string {
	out := make([]string, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.Path
	}
	return out
}
