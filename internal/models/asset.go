package models

import (
	"fmt"

	"github.com/Mahendrakumar19/streamgate/internal/apperrors"
)

// AssetType is the kind of HLS resource the proxy may serve
type AssetType string

const (
	AssetMaster   AssetType = "master"
	AssetPlaylist AssetType = "playlist"
	AssetSegment  AssetType = "segment"
)

const (
	ContentTypePlaylist = "application/vnd.apple.mpegurl"
	ContentTypeSegment  = "video/MP2T"
)

// ParseAssetType validates the raw 'type' query value
func ParseAssetType(raw string) (AssetType, error) {
	switch t := AssetType(raw); t {
	case AssetMaster, AssetPlaylist, AssetSegment:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownAssetType, raw)
	}
}

// ContentType the asset should be served with when origin does not say otherwise
func (t AssetType) ContentType() string {
	if t == AssetSegment {
		return ContentTypeSegment
	}
	return ContentTypePlaylist
}
