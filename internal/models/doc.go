// Package models defines the core domain models for housesplit.
//
// # Records
//
// The record store holds two kinds of records, both bucketed by Period:
//   - Expense: one outlay by a payer, split among participants using a SplitStrategy
//   - Settlement: a real-world transfer between two members with a confirmation workflow
//
// Members are a fixed, configured set identified by short string ids. The engine
// treats membership as given and never creates or deletes members.
//
// # Split strategies
//
// A SplitStrategy is a closed set of variants: EqualSplit, AmountSplit and PercentSplit.
// Each variant carries exactly the data its resolution rule needs. Expenses built with
// NewExpense are validated at construction time, so downstream code can assume
// well-formed input.
//
// # Money
//
// All amounts are decimal.Decimal values. Amounts entered by members carry two fractional
// digits; derived values (equal shares, percentages) keep full precision until they are
// displayed or turned into a transfer.
package models
