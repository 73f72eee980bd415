// Package statuspb defines the status response JSON document sent in reply
// to a Status Request packet, and the color-code translation applied to its
// text fields.
package statuspb

import (
	"encoding/json"
	"strings"
)

// Version describes the server's reported name and protocol number.
type Version struct {
	Name     string `json:"name"`
	Protocol int16  `json:"protocol"`
}

// PlayerSample is one entry in the Players.Sample hover list.
type PlayerSample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Players describes the server's player count and sample list.
type Players struct {
	Max    int32          `json:"max"`
	Online int32          `json:"online"`
	Sample []PlayerSample `json:"sample,omitempty"`
}

// Description is the MOTD, expressed as a flat text chat component.
type Description struct {
	Text string `json:"text"`
}

// StatusResponse is the full JSON document returned by a Status Response
// packet.
type StatusResponse struct {
	Version            Version     `json:"version"`
	Players            Players     `json:"players"`
	Description        Description `json:"description"`
	Favicon            *string     `json:"favicon,omitempty"`
	EnforcesSecureChat bool        `json:"enforcesSecureChat"`
	PreviewsChat       bool        `json:"previewsChat"`
}

// TranslateColorCodes replaces the ampersand color-code escape with the
// section-sign form the client expects.
func TranslateColorCodes(s string) string {
	return strings.ReplaceAll(s, "&", "§")
}

// New builds a StatusResponse with color codes translated in the
// description. It adds no player samples; AddPlayerSample translates the
// names of those added later.
func New(name string, protocol int16, maxPlayers, online int32, motd string) StatusResponse {
	return StatusResponse{
		Version:     Version{Name: name, Protocol: protocol},
		Players:     Players{Max: maxPlayers, Online: online},
		Description: Description{Text: TranslateColorCodes(motd)},
	}
}

// SetFaviconImage attaches a PNG favicon given as a data URL the caller has
// already base64-encoded; the string is stored as is.
func (r *StatusResponse) SetFaviconImage(dataURL string) {
	r.Favicon = &dataURL
}

// SetSecureChat sets whether the server enforces secure chat signing.
func (r *StatusResponse) SetSecureChat(v bool) {
	r.EnforcesSecureChat = v
}

// SetPreviewChat sets whether the server previews chat messages.
func (r *StatusResponse) SetPreviewChat(v bool) {
	r.PreviewsChat = v
}

// AddPlayerSample appends a hover-list entry, translating color codes in
// its display name.
func (r *StatusResponse) AddPlayerSample(name, id string) {
	r.Players.Sample = append(r.Players.Sample, PlayerSample{
		Name: TranslateColorCodes(name),
		ID:   id,
	})
}

// Marshal serializes r to its JSON document. The VarInt length prefix is
// not part of the result; it is added when the string is written as an
// mctypes.McString (StatusResponsePacket.Encode).
func Marshal(r StatusResponse) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Unmarshal parses a JSON status document received as an McString payload.
func Unmarshal(s string) (StatusResponse, error) {
	var r StatusResponse
	err := json.Unmarshal([]byte(s), &r)
	return r, err
}
