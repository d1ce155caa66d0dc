/*
Package retention implements the Retention Enforcer (C9): two
independent ticking loops that delete audit and census rows older than
their configured retention windows. Either loop is started only when its
window is configured.
*/
package retention
