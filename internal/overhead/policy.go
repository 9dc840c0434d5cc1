package overhead

// Source is the view of a Channel the refresh policy needs.
type Source interface {
	Processing() bool
	PollNew() bool
}

// ShouldRefresh decides whether the periodic grab may ask for new data.
// A fetch is never requested while one is in flight or while a staged batch
// is still waiting, and a multi-item batch must have been shown in full.
func ShouldRefresh(src Source, allShown bool, shownLen int) bool {
	if src.Processing() || src.PollNew() {
		return false
	}
	return allShown || shownLen <= 1
}
