package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli"

	"canbridge/internal/can"
	"canbridge/internal/canmsg"
	"canbridge/internal/nmea2000"
	"canbridge/internal/utils"
)

var encoders = map[canmsg.Kind]func([]byte) (canmsg.Message, error){
	canmsg.KindStatus:               fromJSON[canmsg.Status],
	canmsg.KindRudderSetState:       fromJSON[canmsg.RudderSetState],
	canmsg.KindRudderSetTxRate:      fromJSON[canmsg.RudderSetTxRate],
	canmsg.KindRudderDetails:        fromJSON[canmsg.RudderDetails],
	canmsg.KindAttitude:             fromJSON[canmsg.Attitude],
	canmsg.KindYawRate:              fromJSON[canmsg.YawRate],
	canmsg.KindAngularVelocity:      fromJSON[canmsg.AngularVelocity],
	canmsg.KindLinearAcceleration:   fromJSON[canmsg.LinearAcceleration],
	canmsg.KindGPSPosition:          fromJSON[canmsg.GPSPosition],
	canmsg.KindEstimatedGPSPosition: fromJSON[canmsg.EstimatedGPSPosition],
	canmsg.KindGPSVelocity:          fromJSON[canmsg.GPSVelocity],
}

func fromJSON[T canmsg.Message](data []byte) (canmsg.Message, error) {
	var m T
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// encodeMessage builds the frame for kind from a JSON object of its fields.
func encodeMessage(kind, body string) (can.Frame, error) {
	k, ok := canmsg.KindByName(kind)
	if !ok {
		return can.Frame{}, fmt.Errorf("unknown kind %q", kind)
	}
	if strings.TrimSpace(body) == "" {
		body = "{}"
	}
	m, err := encoders[k]([]byte(body))
	if err != nil {
		return can.Frame{}, fmt.Errorf("%s fields: %w", kind, err)
	}
	return m.Frame(), nil
}

// parseFrame reads candump notation: ID#DATA. Identifiers longer than three
// digits are extended.
func parseFrame(s string) (can.Frame, error) {
	idStr, dataStr, ok := strings.Cut(strings.TrimSpace(s), "#")
	if !ok {
		return can.Frame{}, fmt.Errorf("frame %q: want ID#DATA", s)
	}
	id, err := utils.ParseHexID(idStr)
	if err != nil {
		return can.Frame{}, err
	}
	data, err := utils.ParseHexBytes(dataStr)
	if err != nil {
		return can.Frame{}, err
	}
	if len(data) > can.MaxDataLen {
		return can.Frame{}, fmt.Errorf("frame %q: %w", s, can.ErrInvalidLen)
	}
	f := can.NewFrame(id, data)
	f.Extended = len(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(idStr)), "0x")) > 3
	if err := f.Validate(); err != nil {
		return can.Frame{}, fmt.Errorf("frame %q: %w", s, err)
	}
	return f, nil
}

func candump(f can.Frame) string {
	return utils.HexID(f.ID, f.Extended) + "#" + utils.BytesToHex(f.Payload())
}

type decoded struct {
	Kind    string         `json:"kind"`
	Message canmsg.Message `json:"message"`
}

func decodeMessage(f can.Frame) (decoded, error) {
	m, ok := canmsg.Decode(f)
	if !ok {
		return decoded{}, fmt.Errorf("%s: not an outbound message", candump(f))
	}
	return decoded{Kind: m.Kind().String(), Message: m}, nil
}

type n2kDecoded struct {
	Header  nmea2000.Header `json:"header"`
	PGN     string          `json:"pgn"`
	Fields  any             `json:"fields,omitempty"`
	Decoded string          `json:"decoded_mask,omitempty"`
}

func decodeN2K(f can.Frame) (n2kDecoded, error) {
	if !f.Extended {
		return n2kDecoded{}, fmt.Errorf("%s: NMEA 2000 frames are extended", candump(f))
	}
	h := nmea2000.DecodeID(f.ID)
	out := n2kDecoded{Header: h, PGN: h.PGN.String()}

	data := f.Payload()
	all := nmea2000.AllFields
	var mask nmea2000.Fields
	switch h.PGN {
	case nmea2000.PGNSystemTime:
		out.Fields, mask = nmea2000.ParseSystemTime(data, all)
	case nmea2000.PGNRudder:
		out.Fields, mask = nmea2000.ParseRudder(data, all)
	case nmea2000.PGNVesselHeading:
		out.Fields, mask = nmea2000.ParseVesselHeading(data, all)
	case nmea2000.PGNBatteryStatus:
		out.Fields, mask = nmea2000.ParseBatteryStatus(data, all)
	case nmea2000.PGNSpeed:
		out.Fields, mask = nmea2000.ParseSpeed(data, all)
	case nmea2000.PGNWaterDepth:
		out.Fields, mask = nmea2000.ParseWaterDepth(data, all)
	case nmea2000.PGNPositionRapid:
		out.Fields, mask = nmea2000.ParsePositionRapid(data, all)
	case nmea2000.PGNCOGSOGRapid:
		out.Fields, mask = nmea2000.ParseCOGSOGRapid(data, all)
	case nmea2000.PGNWindData:
		out.Fields, mask = nmea2000.ParseWindData(data, all)
	case nmea2000.PGNEnvironmental:
		out.Fields, mask = nmea2000.ParseEnvironmental(data, all)
	case nmea2000.PGNEnvironmentalHumidity:
		out.Fields, mask = nmea2000.ParseEnvironmentalHumidity(data, all)
	default:
		return out, nil
	}
	out.Decoded = fmt.Sprintf("%#04x", uint16(mask))
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("usage: canctl encode <kind> <json>", 2)
	}
	f, err := encodeMessage(c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Println(candump(f))
	return nil
}

func decodeCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: canctl decode <id#data>", 2)
	}
	f, err := parseFrame(c.Args().First())
	if err != nil {
		return err
	}
	d, err := decodeMessage(f)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, d)
}

func n2kCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: canctl n2k <id#data>", 2)
	}
	f, err := parseFrame(c.Args().First())
	if err != nil {
		return err
	}
	d, err := decodeN2K(f)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, d)
}
