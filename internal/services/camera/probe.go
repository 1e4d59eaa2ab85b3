package camera

// ListAvailable probes device indices from 0 upward and returns the ones
// that open, stopping at the first failure or after limit indices. Gaps
// in the numbering hide every device after them.
func ListAvailable(opener Opener, limit int) []int {
	available := []int{}
	for index := 0; index < limit; index++ {
		src, err := opener.Open(index)
		if err != nil {
			break
		}
		_ = src.Close()
		available = append(available, index)
	}
	return available
}
