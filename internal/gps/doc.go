// Package gps turns the receiver's NMEA byte stream into a last known
// position.
//
// Bytes from the serial Port are fed into an Accumulator, which rebuilds
// sentences, parses them with go-nmea and keeps the most recent latitude
// and longitude as RawCoordinate values. Convert renders a coordinate as
// signed decimal degrees for the telemetry line.
package gps
