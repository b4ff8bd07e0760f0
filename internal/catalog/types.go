// Package catalog implements the typed relational store for nodes, tracks,
// images, albums, artists and lyrics (§4.A of the design).
package catalog

import (
	l "github.com/sirupsen/logrus"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "catalog"})

// NodeType is the kind of filesystem object a Node represents.
type NodeType int

// possible node types
const (
	NodeOther NodeType = iota
	NodeDirectory
	NodeFile
)

// Root is a named virtual top-level directory. All catalog paths are
// prefixed with Name.
type Root struct {
	Name string
	Path string
}

// Node is a filesystem object observed under a root (§3).
type Node struct {
	ID       int64
	Type     NodeType
	ParentID *int64
	MasterID *int64
	Name     string
	Path     string
	Modified int64
}

// Track is a playable logical unit (§3). Start is non-nil iff the track is
// virtual (a cue slice of a larger file).
type Track struct {
	ID              int64
	NodeID          int64
	StreamIndex     int64
	TrackIndex      *int64
	Start           *float64
	Number          int64
	Title           string
	ArtistID        int64
	ArtistName      string
	AlbumID         int64
	AlbumName       string
	AlbumArtistID   *int64
	AlbumArtistName *string
	Length          float64
}

// Image is a standalone or embedded picture (§3).
type Image struct {
	ID          int64
	NodeID      int64
	StreamIndex *int64
	Description string
	Width       int64
	Height      int64
}

// Artist is a performer/composer identity, unique by exact name at
// creation time (§3).
type Artist struct {
	ID   int64
	Name string
}

// Album groups tracks under a name, with a denormalised artist and an
// optional representative cover image (§3).
type Album struct {
	ID         int64
	Name       string
	ArtistID   *int64
	ArtistName *string
	ImageID    *int64
}

// TrackLyrics is the lazily-fetched lyrics body for a track (§3).
type TrackLyrics struct {
	TrackID  int64
	Lyrics   *string
	Provider *string
	Source   *string
	Modified int64
}
