package hse

// Status is the decoded controller status, reported as two little-endian
// data words of single-bit flags.
type Status struct {
	Step          bool // executing in step mode
	OneCycle      bool // executing in one-cycle mode
	ContinuousRun bool // executing in continuous (auto) mode
	Running       bool // a job is running
	SpeedLimited  bool // speed limited operation
	Teach         bool // teach mode
	Play          bool // play mode
	Remote        bool // remote command mode
	PendantHold   bool // held from the programming pendant
	ExternalHold  bool // held from an external input
	CommandHold   bool // held by command
	Alarm         bool // an alarm is active
	Error         bool // an error is active
	ServoOn       bool // servo power is on
}

// ReadStatus reads the controller status words.
type ReadStatus struct{}

func (ReadStatus) Division() Division { return DivisionRobot }

func (ReadStatus) Selector() Selector {
	return Selector{Command: cmdReadStatus, Instance: 1, Attribute: 0, Service: serviceGetAll}
}

func (ReadStatus) AppendPayload(out []byte) ([]byte, error) { return out, nil }

func (ReadStatus) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	if err := expectPayloadSize(len(payload), 8); err != nil {
		return nil, err
	}

	d := newDecoder(payload)
	data1, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	data2, err := d.readUint32()
	if err != nil {
		return nil, err
	}

	return Status{
		Step:          data1&0x01 != 0,
		OneCycle:      data1&0x02 != 0,
		ContinuousRun: data1&0x04 != 0,
		Running:       data1&0x08 != 0,
		SpeedLimited:  data1&0x10 != 0,
		Teach:         data1&0x20 != 0,
		Play:          data1&0x40 != 0,
		Remote:        data1&0x80 != 0,
		PendantHold:   data2&0x02 != 0,
		ExternalHold:  data2&0x04 != 0,
		CommandHold:   data2&0x08 != 0,
		Alarm:         data2&0x10 != 0,
		Error:         data2&0x20 != 0,
		ServoOn:       data2&0x40 != 0,
	}, nil
}
