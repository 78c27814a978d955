// Package statusexport records M2Web device status snapshots in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. The CLI's export
// verb fetches the current device listing and writes one point per device:
// a 0/1 online gauge plus attached LAN device and service counts, tagged by
// device name and M2Web server.
//
// # Usage
//
//	client, err := statusexport.Connect(cfg.Metrics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteListing(devices)
//	client.Flush()
//
// # Error Handling
//
// Writes are non-blocking and batched; write errors are delivered through
// the SetOnError callback. Connection and health check errors are returned
// directly.
package statusexport
