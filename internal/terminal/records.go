package terminal

import (
	"bytes"
	"encoding/binary"
	"strconv"

	"github.com/user/fingerpulse/internal/model"
)

// Record layouts observed across firmware revisions. Current devices stream
// 40-byte attendance records; some older units use a packed 16-byte layout.
const (
	attRecordSize       = 40
	attRecordSizeLegacy = 16
	userRecordSize      = 72
)

// parseAttendanceRecords decodes a bulk attendance dataset into raw punch
// events. The dataset starts with a 4-byte size prefix. Unrecognizable
// datasets yield zero records rather than an error; individual garbage
// records are dropped.
func parseAttendanceRecords(data []byte) []model.RawPunchEvent {
	if len(data) <= 4 {
		return nil
	}
	data = data[4:]

	switch {
	case len(data)%attRecordSize == 0:
		return parseAttendance40(data)
	case len(data)%attRecordSizeLegacy == 0:
		return parseAttendance16(data)
	default:
		// Truncated transfer; decode the whole records that did arrive.
		whole := len(data) / attRecordSize * attRecordSize
		if whole == 0 {
			return nil
		}
		return parseAttendance40(data[:whole])
	}
}

func parseAttendance40(data []byte) []model.RawPunchEvent {
	events := make([]model.RawPunchEvent, 0, len(data)/attRecordSize)

	for off := 0; off+attRecordSize <= len(data); off += attRecordSize {
		rec := data[off : off+attRecordSize]

		userSn := binary.LittleEndian.Uint16(rec[0:2])
		deviceUserID := trimPadding(rec[2:11])
		ts := binary.LittleEndian.Uint32(rec[27:31])

		if deviceUserID == "" && userSn == 0 {
			continue
		}
		if deviceUserID == "" {
			deviceUserID = strconv.Itoa(int(userSn))
		}

		events = append(events, model.RawPunchEvent{
			"userSn":       int(userSn),
			"deviceUserId": deviceUserID,
			"recordTime":   decodeTime(ts),
		})
	}

	return events
}

func parseAttendance16(data []byte) []model.RawPunchEvent {
	events := make([]model.RawPunchEvent, 0, len(data)/attRecordSizeLegacy)

	for off := 0; off+attRecordSizeLegacy <= len(data); off += attRecordSizeLegacy {
		rec := data[off : off+attRecordSizeLegacy]

		userSn := binary.LittleEndian.Uint16(rec[0:2])
		ts := binary.LittleEndian.Uint32(rec[4:8])
		if userSn == 0 {
			continue
		}

		events = append(events, model.RawPunchEvent{
			"userSn":       int(userSn),
			"deviceUserId": strconv.Itoa(int(userSn)),
			"recordTime":   decodeTime(ts),
		})
	}

	return events
}

// parseUserRecords decodes the enrolled-user table.
func parseUserRecords(data []byte) []model.TerminalUser {
	if len(data) <= 4 {
		return nil
	}
	data = data[4:]

	users := make([]model.TerminalUser, 0, len(data)/userRecordSize)
	for off := 0; off+userRecordSize <= len(data); off += userRecordSize {
		rec := data[off : off+userRecordSize]

		uid := binary.LittleEndian.Uint16(rec[0:2])
		role := int(rec[2])
		name := trimPadding(rec[11:35])
		userID := trimPadding(rec[48:57])

		if userID == "" {
			userID = strconv.Itoa(int(uid))
		}

		users = append(users, model.TerminalUser{
			UID:    uid,
			UserID: userID,
			Name:   name,
			Role:   role,
		})
	}

	return users
}

// trimPadding strips NUL padding and surrounding whitespace from a
// fixed-width device field.
func trimPadding(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimSpace(b))
}
