package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

const sessionFormatVersionCurrent = 1

func writeString8(buf *bytes.Buffer, field, value string) error {
	if len(value) > 255 {
		return errors.New(field + " too long")
	}
	buf.WriteByte(byte(len(value)))
	buf.WriteString(value)
	return nil
}

func readString8(reader *bytes.Reader) (string, error) {
	length, err := reader.ReadByte()
	if err != nil {
		return "", err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}

// Tokens exceed 255 bytes, so they carry a uint16 length prefix.
func writeString16(buf *bytes.Buffer, field, value string) error {
	if len(value) > math.MaxUint16 {
		return errors.New(field + " too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(value))); err != nil {
		return err
	}
	buf.WriteString(value)
	return nil
}

func readString16(reader *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return "", err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}

// Encode serializes a [Session] into the versioned binary record format.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionCurrent)

	if err := writeString8(&buf, "principalID", s.PrincipalID); err != nil {
		return nil, err
	}
	if err := writeString8(&buf, "displayName", s.DisplayName); err != nil {
		return nil, err
	}
	if err := writeString8(&buf, "role", s.Role); err != nil {
		return nil, err
	}

	if len(s.Permissions) > 255 {
		return nil, errors.New("too many permissions")
	}
	buf.WriteByte(byte(len(s.Permissions)))
	for _, p := range s.Permissions {
		if err := writeString8(&buf, "permission", p); err != nil {
			return nil, err
		}
	}

	if err := writeString16(&buf, "accessToken", s.AccessToken); err != nil {
		return nil, err
	}
	if err := writeString16(&buf, "refreshToken", s.RefreshToken); err != nil {
		return nil, err
	}

	for _, ts := range []int64{s.CreatedAt, s.RefreshedAt, s.AccessExpiresAt, s.ExpiresAt} {
		if err := binary.Write(&buf, binary.BigEndian, ts); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// Decode parses a binary record produced by [Encode]. The SessionID is not
// part of the blob; callers set it from the store key.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionCurrent {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}

	if s.PrincipalID, err = readString8(reader); err != nil {
		return nil, err
	}
	if s.DisplayName, err = readString8(reader); err != nil {
		return nil, err
	}
	if s.Role, err = readString8(reader); err != nil {
		return nil, err
	}

	permCount, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if permCount > 0 {
		s.Permissions = make([]string, 0, permCount)
		for i := 0; i < int(permCount); i++ {
			p, err := readString8(reader)
			if err != nil {
				return nil, err
			}
			s.Permissions = append(s.Permissions, p)
		}
	}

	if s.AccessToken, err = readString16(reader); err != nil {
		return nil, err
	}
	if s.RefreshToken, err = readString16(reader); err != nil {
		return nil, err
	}

	for _, ts := range []*int64{&s.CreatedAt, &s.RefreshedAt, &s.AccessExpiresAt, &s.ExpiresAt} {
		if err := binary.Read(reader, binary.BigEndian, ts); err != nil {
			return nil, err
		}
	}

	return s, nil
}
