// Package ratecontrol implements the adaptive pacing logic for the safefeed
// client: the rate estimate, the poll gate, and the resume cursor.
//
// This package is internal to safefeed and holds the pure decision logic,
// free of any I/O. The main components are:
//
//   - [Tuning]: the interval / batch size / expected rate triple, with the
//     exponential-moving-average update rule
//   - [WaitFor]: the gate deciding how long to wait before the next fetch
//   - [Cursor]: the resume position and last observed batch size
//
// Users of the safefeed library should not need to interact with this
// package directly. Configuration is done through the main safefeed package.
package ratecontrol
