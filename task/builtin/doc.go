// Package builtin provides tasks compiled into the worker. They carry no
// business logic and are used to smoke test the pipeline on a cluster:
//
//	version: 1
//	type: builtin.Sleep
//	task:
//	  duration: 10s
package builtin
