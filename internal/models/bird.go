package models

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Bird is a catalog entry. Two birds are the same bird when their ids match.
type Bird struct {
	ID             uint64    `json:"id" db:"id"`
	CommonName     string    `json:"common_name" db:"common_name"`
	ScientificName string    `json:"scientific_name" db:"scientific_name"`
	Image          string    `json:"image" db:"image"`
	Sounds         []Sound   `json:"sounds" db:"-"`
	CreatedAt      time.Time `json:"-" db:"created_at"`
}

type Sound struct {
	Path    string `json:"path" db:"path"`
	Default bool   `json:"default" db:"is_default"`
}

// Equal compares birds by id only.
func (b Bird) Equal(other Bird) bool {
	return b.ID == other.ID
}

// DefaultSound returns the sound flagged as default, falling back to the first one.
func (b Bird) DefaultSound() (Sound, bool) {
	for _, s := range b.Sounds {
		if s.Default {
			return s, true
		}
	}
	if len(b.Sounds) > 0 {
		return b.Sounds[0], true
	}
	return Sound{}, false
}

// BirdPack is a curated collection of birds. Packs of the day carry the day they
// are assigned to.
type BirdPack struct {
	ID          uint64      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Birds       []Bird      `json:"birds,omitempty"`
	Day         *civil.Date `json:"day,omitempty"`
}

// MediaURL joins a storage object path onto the public media base URL.
func MediaURL(base, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// BirdView is a bird as sent to clients, with media paths turned into URLs.
type BirdView struct {
	ID             uint64 `json:"id"`
	CommonName     string `json:"common_name"`
	ScientificName string `json:"scientific_name"`
	ImageURL       string `json:"image_url"`
	SoundURL       string `json:"sound_url,omitempty"`
}

func NewBirdView(b Bird, mediaBase string) BirdView {
	v := BirdView{
		ID:             b.ID,
		CommonName:     b.CommonName,
		ScientificName: b.ScientificName,
		ImageURL:       MediaURL(mediaBase, b.Image),
	}
	if s, ok := b.DefaultSound(); ok {
		v.SoundURL = MediaURL(mediaBase, s.Path)
	}
	return v
}
