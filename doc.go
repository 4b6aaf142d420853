// Package dietz computes the Modified Dietz rate of return of a portfolio over
// a period, taking into account the timing and size of external cash flows
// (contributions and withdrawals) without requiring daily valuations.
//
// The core is the ModifiedDietz engine. Given a Period (start, end], the
// market values at both boundaries and a map of dated cash flows, it derives:
//   - the net cash flows: flows strictly after start, at or before end, and
//     larger than epsilon in magnitude;
//   - the adjusted period: the period shrunk to the first (resp. last) cash
//     flow when the portfolio starts (resp. ends) with a zero market value;
//   - the adjusted net cash flow: each flow weighted by the fraction of the
//     adjusted period remaining after it;
//   - the gain or loss, the average capital and the performance ratio.
//
// A zero average capital makes the performance NaN or ±Inf. This is a valid
// result, not an error.
//
// The package also decodes cash flows from JSONL files and JSON documents
// (see DecodeCashflows and ExtractCashflows). Annualization and the linking
// of sub-period returns are left to the caller.
package dietz
