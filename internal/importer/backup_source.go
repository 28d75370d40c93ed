package importer

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"time"

	"salio/sms-ledger/internal/logging"
)

// smsBackup mirrors the "SMS Backup & Restore" XML export format: a flat
// list of <sms> elements with everything in attributes.
type smsBackup struct {
	XMLName  xml.Name    `xml:"smses"`
	Messages []backupSMS `xml:"sms"`
}

type backupSMS struct {
	Address string `xml:"address,attr"`
	Body    string `xml:"body,attr"`
	// Date is the delivery time in milliseconds since the Unix epoch.
	Date int64 `xml:"date,attr"`
}

// BackupSource reads provider messages from an SMS backup XML file and
// serves them through the MessageSource contract: filtered by sender address
// and inclusive minimum date, newest first.
type BackupSource struct {
	path string
	log  logging.Logger
}

// NewBackupSource creates a source reading the backup file at path.
func NewBackupSource(path string, logger logging.Logger) *BackupSource {
	if logger == nil {
		logger = logging.NewMockLogger()
	}
	return &BackupSource{path: path, log: logger}
}

// Messages returns all messages from address delivered at or after since,
// newest first. A zero since returns everything from the address.
func (b *BackupSource) Messages(ctx context.Context, address string, since time.Time) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("reading backup file: %w", err)
	}

	var backup smsBackup
	if err := xml.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("parsing backup file: %w", err)
	}

	var messages []Message
	for _, sms := range backup.Messages {
		if sms.Address != address {
			continue
		}
		ts := time.UnixMilli(sms.Date)
		if !since.IsZero() && ts.Before(since) {
			continue
		}
		messages = append(messages, Message{Body: sms.Body, Timestamp: ts})
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.After(messages[j].Timestamp)
	})

	b.log.WithFields(
		logging.Field{Key: "file", Value: b.path},
		logging.Field{Key: "total", Value: len(backup.Messages)},
		logging.Field{Key: "matched", Value: len(messages)},
	).Debug("Backup file read")
	return messages, nil
}
