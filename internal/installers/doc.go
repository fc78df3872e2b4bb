// Package installers renders the small files etcdnode keeps in place next
// to etcd: the defragmentation cron job, the NRPE command for the cluster
// health check and the systemd unit of the leader exporter.
//
// Every file is applied idempotently. The scripts those files invoke are
// shipped by packages and are not managed here.
package installers
