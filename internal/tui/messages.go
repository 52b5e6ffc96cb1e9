package tui

// statisticsFetchedMsg reports that an initialize or refetch call returned.
type statisticsFetchedMsg struct {
	err     error
	version uint64
	refetch bool
}
