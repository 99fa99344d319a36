// Package form implements the multi-step form (wizard) controller.
//
// A Controller owns the step position, the committed answers and the
// progress projection of one wizard. It never touches concrete markup: every
// visible effect goes through the Host it was bound to, and the optional
// renderer interfaces a host may also satisfy. Lifecycle changes are
// reported to listeners as change, complete and submit events carrying a
// snapshot of the answers.
package form
