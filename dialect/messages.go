package dialect

import (
	"encoding/binary"
	"math"
)

// Message ids and field layouts below match the published MAVLink common.xml
// dialect so a real ground-control station could decode them; only the
// subset of messages this repo's tests and cmd/mavlink-gw relay exercise
// is implemented.
const (
	heartbeatID   = 0
	sysStatusID   = 1
	paramValueID  = 22
	attitudeID    = 30
	gpsRawIntID   = 24
	commandLongID = 76
	commandAckID  = 77
)

// MAV_TYPE / MAV_AUTOPILOT / MAV_STATE enumerants used by HEARTBEAT.
const (
	MavTypeQuadrotor        = 2
	MavAutopilotArdupilotMega = 3
	MavStateStandby         = 3
)

// Heartbeat is MAVLink message id 0.
type Heartbeat struct {
	CustomMode     uint32
	Type           uint8
	Autopilot      uint8
	BaseMode       uint8
	SystemStatus   uint8
	MavlinkVersion uint8
}

func (Heartbeat) MessageID() uint32 { return heartbeatID }

func (h Heartbeat) Marshal() []byte {
	b := make([]byte, 9)
	binary.LittleEndian.PutUint32(b[0:4], h.CustomMode)
	b[4] = h.Type
	b[5] = h.Autopilot
	b[6] = h.BaseMode
	b[7] = h.SystemStatus
	b[8] = h.MavlinkVersion
	return b
}

func parseHeartbeat(payload []byte) Heartbeat {
	b := zeroExtend(payload, 9)
	return Heartbeat{
		CustomMode:     binary.LittleEndian.Uint32(b[0:4]),
		Type:           b[4],
		Autopilot:      b[5],
		BaseMode:       b[6],
		SystemStatus:   b[7],
		MavlinkVersion: b[8],
	}
}

// ParamValue is MAVLink message id 22.
type ParamValue struct {
	ParamValue float32
	ParamCount uint16
	ParamIndex uint16
	ParamID    [16]byte
	ParamType  uint8
}

func (ParamValue) MessageID() uint32 { return paramValueID }

func (p ParamValue) Marshal() []byte {
	b := make([]byte, 25)
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(p.ParamValue))
	binary.LittleEndian.PutUint16(b[4:6], p.ParamCount)
	binary.LittleEndian.PutUint16(b[6:8], p.ParamIndex)
	copy(b[8:24], p.ParamID[:])
	b[24] = p.ParamType
	return b
}

func parseParamValue(payload []byte) ParamValue {
	b := zeroExtend(payload, 25)
	var p ParamValue
	p.ParamValue = math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))
	p.ParamCount = binary.LittleEndian.Uint16(b[4:6])
	p.ParamIndex = binary.LittleEndian.Uint16(b[6:8])
	copy(p.ParamID[:], b[8:24])
	p.ParamType = b[24]
	return p
}

// SysStatus is MAVLink message id 1.
type SysStatus struct {
	OnboardControlSensorsPresent uint32
	OnboardControlSensorsEnabled uint32
	OnboardControlSensorsHealth  uint32
	Load                         uint16
	VoltageBattery               uint16
	CurrentBattery               int16
	DropRateComm                 uint16
	ErrorsComm                   uint16
	ErrorsCount1                 uint16
	ErrorsCount2                 uint16
	ErrorsCount3                 uint16
	ErrorsCount4                 uint16
	BatteryRemaining             int8
}

func (SysStatus) MessageID() uint32 { return sysStatusID }

func (s SysStatus) Marshal() []byte {
	b := make([]byte, 31)
	binary.LittleEndian.PutUint32(b[0:4], s.OnboardControlSensorsPresent)
	binary.LittleEndian.PutUint32(b[4:8], s.OnboardControlSensorsEnabled)
	binary.LittleEndian.PutUint32(b[8:12], s.OnboardControlSensorsHealth)
	binary.LittleEndian.PutUint16(b[12:14], s.Load)
	binary.LittleEndian.PutUint16(b[14:16], s.VoltageBattery)
	binary.LittleEndian.PutUint16(b[16:18], uint16(s.CurrentBattery))
	binary.LittleEndian.PutUint16(b[18:20], s.DropRateComm)
	binary.LittleEndian.PutUint16(b[20:22], s.ErrorsComm)
	binary.LittleEndian.PutUint16(b[22:24], s.ErrorsCount1)
	binary.LittleEndian.PutUint16(b[24:26], s.ErrorsCount2)
	binary.LittleEndian.PutUint16(b[26:28], s.ErrorsCount3)
	binary.LittleEndian.PutUint16(b[28:30], s.ErrorsCount4)
	b[30] = byte(s.BatteryRemaining)
	return b
}

func parseSysStatus(payload []byte) SysStatus {
	b := zeroExtend(payload, 31)
	return SysStatus{
		OnboardControlSensorsPresent: binary.LittleEndian.Uint32(b[0:4]),
		OnboardControlSensorsEnabled: binary.LittleEndian.Uint32(b[4:8]),
		OnboardControlSensorsHealth:  binary.LittleEndian.Uint32(b[8:12]),
		Load:                         binary.LittleEndian.Uint16(b[12:14]),
		VoltageBattery:               binary.LittleEndian.Uint16(b[14:16]),
		CurrentBattery:               int16(binary.LittleEndian.Uint16(b[16:18])),
		DropRateComm:                 binary.LittleEndian.Uint16(b[18:20]),
		ErrorsComm:                   binary.LittleEndian.Uint16(b[20:22]),
		ErrorsCount1:                 binary.LittleEndian.Uint16(b[22:24]),
		ErrorsCount2:                 binary.LittleEndian.Uint16(b[24:26]),
		ErrorsCount3:                 binary.LittleEndian.Uint16(b[26:28]),
		ErrorsCount4:                 binary.LittleEndian.Uint16(b[28:30]),
		BatteryRemaining:             int8(b[30]),
	}
}

// Attitude is MAVLink message id 30.
type Attitude struct {
	TimeBootMs uint32
	Roll       float32
	Pitch      float32
	Yaw        float32
	RollSpeed  float32
	PitchSpeed float32
	YawSpeed   float32
}

func (Attitude) MessageID() uint32 { return attitudeID }

func (a Attitude) Marshal() []byte {
	b := make([]byte, 28)
	binary.LittleEndian.PutUint32(b[0:4], a.TimeBootMs)
	putFloat := func(off int, v float32) { binary.LittleEndian.PutUint32(b[off:off+4], math.Float32bits(v)) }
	putFloat(4, a.Roll)
	putFloat(8, a.Pitch)
	putFloat(12, a.Yaw)
	putFloat(16, a.RollSpeed)
	putFloat(20, a.PitchSpeed)
	putFloat(24, a.YawSpeed)
	return b
}

func parseAttitude(payload []byte) Attitude {
	b := zeroExtend(payload, 28)
	getFloat := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4])) }
	return Attitude{
		TimeBootMs: binary.LittleEndian.Uint32(b[0:4]),
		Roll:       getFloat(4),
		Pitch:      getFloat(8),
		Yaw:        getFloat(12),
		RollSpeed:  getFloat(16),
		PitchSpeed: getFloat(20),
		YawSpeed:   getFloat(24),
	}
}

// GPSRawInt is MAVLink message id 24.
type GPSRawInt struct {
	TimeUsec          uint64
	Lat               int32
	Lon               int32
	Alt               int32
	Eph               uint16
	Epv               uint16
	Vel               uint16
	Cog               uint16
	FixType           uint8
	SatellitesVisible uint8
}

func (GPSRawInt) MessageID() uint32 { return gpsRawIntID }

func (g GPSRawInt) Marshal() []byte {
	b := make([]byte, 30)
	binary.LittleEndian.PutUint64(b[0:8], g.TimeUsec)
	binary.LittleEndian.PutUint32(b[8:12], uint32(g.Lat))
	binary.LittleEndian.PutUint32(b[12:16], uint32(g.Lon))
	binary.LittleEndian.PutUint32(b[16:20], uint32(g.Alt))
	binary.LittleEndian.PutUint16(b[20:22], g.Eph)
	binary.LittleEndian.PutUint16(b[22:24], g.Epv)
	binary.LittleEndian.PutUint16(b[24:26], g.Vel)
	binary.LittleEndian.PutUint16(b[26:28], g.Cog)
	b[28] = g.FixType
	b[29] = g.SatellitesVisible
	return b
}

func parseGPSRawInt(payload []byte) GPSRawInt {
	b := zeroExtend(payload, 30)
	return GPSRawInt{
		TimeUsec:          binary.LittleEndian.Uint64(b[0:8]),
		Lat:               int32(binary.LittleEndian.Uint32(b[8:12])),
		Lon:               int32(binary.LittleEndian.Uint32(b[12:16])),
		Alt:               int32(binary.LittleEndian.Uint32(b[16:20])),
		Eph:               binary.LittleEndian.Uint16(b[20:22]),
		Epv:               binary.LittleEndian.Uint16(b[22:24]),
		Vel:               binary.LittleEndian.Uint16(b[24:26]),
		Cog:               binary.LittleEndian.Uint16(b[26:28]),
		FixType:           b[28],
		SatellitesVisible: b[29],
	}
}

// CommandLong is MAVLink message id 76.
type CommandLong struct {
	Param1          float32
	Param2          float32
	Param3          float32
	Param4          float32
	Param5          float32
	Param6          float32
	Param7          float32
	Command         uint16
	TargetSystem    uint8
	TargetComponent uint8
	Confirmation    uint8
}

func (CommandLong) MessageID() uint32 { return commandLongID }

func (c CommandLong) Marshal() []byte {
	b := make([]byte, 33)
	params := [7]float32{c.Param1, c.Param2, c.Param3, c.Param4, c.Param5, c.Param6, c.Param7}
	for i, p := range params {
		binary.LittleEndian.PutUint32(b[i*4:i*4+4], math.Float32bits(p))
	}
	binary.LittleEndian.PutUint16(b[28:30], c.Command)
	b[30] = c.TargetSystem
	b[31] = c.TargetComponent
	b[32] = c.Confirmation
	return b
}

func parseCommandLong(payload []byte) CommandLong {
	b := zeroExtend(payload, 33)
	getFloat := func(i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : i*4+4])) }
	return CommandLong{
		Param1:          getFloat(0),
		Param2:          getFloat(1),
		Param3:          getFloat(2),
		Param4:          getFloat(3),
		Param5:          getFloat(4),
		Param6:          getFloat(5),
		Param7:          getFloat(6),
		Command:         binary.LittleEndian.Uint16(b[28:30]),
		TargetSystem:    b[30],
		TargetComponent: b[31],
		Confirmation:    b[32],
	}
}

// CommandAck is MAVLink message id 77.
type CommandAck struct {
	Command uint16
	Result  uint8
}

func (CommandAck) MessageID() uint32 { return commandAckID }

func (c CommandAck) Marshal() []byte {
	b := make([]byte, 3)
	binary.LittleEndian.PutUint16(b[0:2], c.Command)
	b[2] = c.Result
	return b
}

func parseCommandAck(payload []byte) CommandAck {
	b := zeroExtend(payload, 3)
	return CommandAck{Command: binary.LittleEndian.Uint16(b[0:2]), Result: b[2]}
}
