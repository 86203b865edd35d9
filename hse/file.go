package hse

import (
	"fmt"
	"strings"
)

// File commands run on the file division. Reads deliver their data as a
// sequence of blocks acknowledged one by one; writes stream blocks the same
// way in the other direction. The udp package reassembles the blocks and
// hands the concatenated payload to DecodeResponse.

func appendFileName(out []byte, name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: file name is empty", ErrInvalidArgument)
	}
	if len(name) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: file name length %d exceeds the maximum payload size %d", ErrInvalidArgument, len(name), MaxPayloadSize)
	}

	return append(out, name...), nil
}

// ReadFileList lists the files on the controller matching Pattern
// (for example "*.JBI").
type ReadFileList struct {
	Pattern string
}

func (ReadFileList) Division() Division { return DivisionFile }

func (ReadFileList) Selector() Selector {
	return Selector{Command: cmdFileList, Instance: 0, Attribute: 0, Service: serviceGetAll}
}

func (c ReadFileList) AppendPayload(out []byte) ([]byte, error) {
	return appendFileName(out, c.Pattern)
}

// DecodeResponse splits the assembled file list into one name per entry.
func (ReadFileList) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	if len(payload) == 0 {
		return []string{}, nil
	}

	names := strings.Split(strings.TrimRight(string(payload), "\r\n"), "\r\n")

	return names, nil
}

// ReadFile reads one file from the controller.
type ReadFile struct {
	Name string
}

func (ReadFile) Division() Division { return DivisionFile }

func (ReadFile) Selector() Selector {
	return Selector{Command: cmdFileRead, Instance: 0, Attribute: 0, Service: serviceGetAll}
}

func (c ReadFile) AppendPayload(out []byte) ([]byte, error) {
	return appendFileName(out, c.Name)
}

func (ReadFile) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	return payload, nil
}

// WriteFile writes one file to the controller. The initial request carries
// the file name; the data follows as continuation blocks.
type WriteFile struct {
	Name string
	Data []byte
}

func (WriteFile) Division() Division { return DivisionFile }

func (WriteFile) Selector() Selector {
	return Selector{Command: cmdFileWrite, Instance: 0, Attribute: 0, Service: serviceSetAll}
}

func (c WriteFile) AppendPayload(out []byte) ([]byte, error) {
	return appendFileName(out, c.Name)
}

func (WriteFile) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	return nil, expectPayloadSize(len(payload), 0)
}

// DeleteFile deletes one file from the controller.
type DeleteFile struct {
	Name string
}

func (DeleteFile) Division() Division { return DivisionFile }

func (DeleteFile) Selector() Selector {
	return Selector{Command: cmdFileDelete, Instance: 0, Attribute: 0, Service: serviceSetAll}
}

func (c DeleteFile) AppendPayload(out []byte) ([]byte, error) {
	return appendFileName(out, c.Name)
}

func (DeleteFile) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	return nil, expectPayloadSize(len(payload), 0)
}
