package main

import "github.com/urfave/cli"

var COMMANDS = []cli.Command{
	{
		Name:      "encode",
		Usage:     "Encode an outbound message and print it in candump notation",
		ArgsUsage: "<kind> <json>",
		Description: "Kinds: status, rudder-set-state, rudder-set-tx-rate, rudder-details, attitude,\n" +
			"   yaw-rate, angular-velocity, linear-acceleration, gps-position,\n" +
			"   estimated-gps-position, gps-velocity.\n" +
			"   Example: canctl encode attitude '{\"Direction\":1,\"Pitch\":0,\"Roll\":-0.5}'",
		Action: encodeCommand,
	},
	{
		Name:      "decode",
		Usage:     "Decode an outbound message frame to JSON",
		ArgsUsage: "<id#data>",
		Action:    decodeCommand,
	},
	{
		Name:      "n2k",
		Usage:     "Decode an NMEA 2000 frame header and its PGN fields",
		ArgsUsage: "<id#data>",
		Action:    n2kCommand,
	},
	{
		Name:  "capture",
		Usage: "Record a SocketCAN interface into a capture file",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "interface, i",
				Value: "can0",
				Usage: "CAN interface to read",
			},
			cli.StringFlag{
				Name:  "out, o",
				Value: "capture.db",
				Usage: "Capture file to create or append to",
			},
			cli.DurationFlag{
				Name:  "duration",
				Value: 0,
				Usage: "Stop after this long (default: until interrupted)",
			},
		},
		Action: captureCommand,
	},
	{
		Name:      "dump",
		Usage:     "Print the frames of a capture file",
		ArgsUsage: "<capture.db>",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "decode",
				Usage: "Decode outbound messages and known PGNs inline",
			},
		},
		Action: dumpCommand,
	},
}
