// Package jobrunner is the worker side of a batch-job framework.
//
// A cluster scheduler launches the worker on a compute node with a shared
// working directory. The worker reconstructs the task described by
// job.pickle in that directory, runs it once and exits. If the scheduler
// terminates the worker with SIGTERM, a ranked heap allocation report is left
// in job.tracemalloc instead.
//
//	capture := diagnostic.Arm() // first statement of main
//	srv, err := jobrunner.New(jobrunner.WithCapture(capture))
//	if err != nil { ... }
//	err = srv.Run(ctx, workDir)
//
// Tasks are plain Go structs whose pointer implements task.Task. They are
// registered with WithTaskTypes or loaded from <package>.so plugins found in
// the current or working directory.
package jobrunner
