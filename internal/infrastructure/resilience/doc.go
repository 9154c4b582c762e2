/*
Package resilience provides a circuit breaker for outbound HTTP made by the shell.

# Overview

The shell talks to two kinds of remote endpoints: the catalog service and the
origins probed before an app is opened. A breaker keeps a dead endpoint from
adding latency to every open or refresh.

# States

  - Closed: calls pass through; consecutive failures are counted
  - Open: calls are rejected with ErrCircuitOpen until the cooldown elapses
  - Half-Open: exactly one trial call is admitted; its outcome closes or re-opens

Transitions:

	Closed --[Failures in a row]-> Open --[Cooldown]-> Half-Open --[success]-> Closed
	                                 ^                     |
	                                 +------[failure]------+

# Usage

	breaker := resilience.New("catalog", resilience.Settings{Failures: 3, Cooldown: 10 * time.Second})
	err := breaker.Do(func() error {
		return fetch(ctx)
	})

Group keeps one breaker per host for probe traffic.
*/
package resilience
