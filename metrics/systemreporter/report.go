package systemreporter

// Report captures a storage-side snapshot of the host, gathered when a
// conversion run takes suspiciously long.
type Report struct {
	IoStat string `json:"io_stat"`
	VmStat string `json:"vm_stat"`
	Mounts string `json:"mounts"`
	Dmesg  string `json:"dmesg"`
}
