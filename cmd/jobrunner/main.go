// Command jobrunner runs the task staged in a working directory.
//
//	jobrunner --tmp-dir /shared/tmp/job-42
package main

import (
	"os"

	"github.com/viant/jobrunner/service/diagnostic"
)

func main() {
	capture := diagnostic.Arm()
	os.Exit(run(capture, os.Args[1:]))
}
