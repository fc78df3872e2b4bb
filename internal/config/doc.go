// Package config defines the operator configuration for an etcd member host.
//
// A single YAML file is deployed to every host of the cluster. [Load] reads
// it strictly, fills unset fields from [Defaults] and validates it, returning
// a [ConfigurationError] that lists every invalid field. Validation runs
// before anything on the host is touched.
//
// Bounded waits that operators may need to tune per site are read from the
// environment by [LoadTimeouts]; [LoadEnvFile] loads them from an env file.
package config
