package barcanyonkillboss

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// MetadataExtractor extracts the top-level header fields of a
// BarCanyonKillBoss mail: mail id, time, receiver, and server id.
type MetadataExtractor struct{}

// NewMetadataExtractor returns a new metadata extractor.
func NewMetadataExtractor() *MetadataExtractor { return &MetadataExtractor{} }

// Section returns the metadata section name.
func (MetadataExtractor) Section() string { return "metadata" }

// Extract pulls mail_id, mail_time, mail_receiver, and server_id off the
// mail root object, the same header shape every kind shares.
func (MetadataExtractor) Extract(input codec.Value) (*extract.Section, error) {
	mailID, err := extract.RequireString(input, "id")
	if err != nil {
		return nil, err
	}
	mailTime, err := extract.RequireUint64(input, "time")
	if err != nil {
		return nil, err
	}
	mailReceiver, err := extract.RequireString(input, "receiver")
	if err != nil {
		return nil, err
	}
	serverID, err := extract.RequireUint64(input, "serverId")
	if err != nil {
		return nil, err
	}

	section := extract.NewSection()
	section.Insert("mail_id", mailID)
	section.Insert("mail_time", float64(mailTime))
	section.Insert("mail_receiver", mailReceiver)
	section.Insert("server_id", float64(serverID))
	return section, nil
}
