// Package remote runs a sub-pipeline on a single remote host, over ssh,
// as one leg of a fork across a cluster.
//
// The original engine pickled the sub-pipeline object graph (including
// compiled function closures) straight onto the wire for the remote
// Python interpreter to unpickle and run. Go has no equivalent of
// cPickle, and a goja-backed function value can't be serialized that
// way either. Instead the remote worker is sent the original CLI tokens
// the sub-pipeline was parsed from (pipeline.Pipeline.CLITokens) and
// reparses them locally with internal/cliparser before running them;
// see cmd/remoteosh.
package remote
