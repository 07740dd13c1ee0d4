// Package models defines the persisted domain models for cashflow.
//
// # Models
//
//   - Group: a settlement roster. Members are ordered; the first member is
//     the Treasurer, the participant who can route a payment between any two
//     members because it accepts every payment channel in the group.
//   - Member: a roster entry with its payment channels (UPI handles, wallet
//     IDs, bank aliases).
//   - Debt: a raw "X owes Y amount" record attached to a group.
//   - Account: an operator who owns groups. Members are plain names and do
//     not need accounts.
//
// # Design Principles
//
// 1. **Integer money**: amounts are minor units (paise, cents) in int64.
// 2. **Names, not pointers**: relationships use ID and name strings.
// 3. **Plans are derived**: a settlement plan is recomputed from the stored
//    roster and debts on demand and never persisted.
package models
