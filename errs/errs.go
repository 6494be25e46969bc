// Package errs defines the sentinel errors shared by the imgcodec packages.
//
// Callers wrap these with fmt.Errorf("...: %w", err) to add context and test
// them with errors.Is. The errors fall into three groups:
//
//   - Representability: ErrDoesNotFit. A value cannot be expressed in the
//     configured width. The caller recovers by trying another configuration or
//     by omitting the unit.
//   - Contract: ErrContractViolation, ErrEncoderBusy. An internal defect.
//     The current unit is aborted.
//   - Size: ErrMapTooBig. The map exceeds the format maximum. The current map
//     fails, other maps in a batch are unaffected.
package errs

import "errors"

var (
	// ErrDoesNotFit reports that a value cannot be represented in the available bit width.
	ErrDoesNotFit = errors.New("value does not fit in configured width")
	// ErrContractViolation reports a write that was not preceded by a successful fit check.
	ErrContractViolation = errors.New("internal contract violation")
	// ErrEncoderBusy reports that an encoding cycle was started while another one is in progress.
	ErrEncoderBusy = errors.New("encoder is already in an encoding cycle")
	// ErrMapTooBig reports that the accumulated output exceeds the maximum map size.
	ErrMapTooBig = errors.New("map exceeds maximum representable size")

	ErrInvalidFieldFormat = errors.New("invalid field format")
	ErrInvalidDescriptor  = errors.New("invalid number descriptor")
	ErrNoNumbers          = errors.New("no house numbers to encode")
	ErrTruncatedStream    = errors.New("truncated bit stream")
	ErrDuplicateNode      = errors.New("duplicate routing node id")
	ErrDuplicateRoad      = errors.New("duplicate road id")
	ErrInvalidPartition   = errors.New("invalid partition data")
	ErrInvalidSeek        = errors.New("invalid seek offset")

	ErrInvalidHeaderSize  = errors.New("invalid header size")
	ErrInvalidHeaderFlags = errors.New("invalid header flags")
	ErrChecksumMismatch   = errors.New("section checksum mismatch")

	ErrReferenceNotFound = errors.New("reference output not found")
	ErrReferenceMismatch = errors.New("output differs from reference")
	ErrInvalidReference  = errors.New("invalid reference file")

	ErrInvalidCompression = errors.New("invalid compression type")

	ErrInvalidConfig = errors.New("invalid configuration")
)
