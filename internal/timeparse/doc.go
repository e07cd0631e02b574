// Package timeparse normalizes time text supplied by the agent.
//
// Input can be ISO-8601 (with or without an offset) or an English phrase such
// as "tomorrow 3pm". Text that starts like an ISO date is parsed strictly and
// never guessed at. Every returned instant carries a location. Relative
// phrases are resolved against the Normalizer's clock, or a reference instant
// with ParseFrom, and take their future reading: "June 5" is the next June 5,
// "3pm" after 3pm is tomorrow.
//
// Example usage:
//
//	n, err := timeparse.New("Europe/Berlin")
//	if err != nil {
//	    return err
//	}
//	start, err := n.Parse("tomorrow noon")
//	if err != nil {
//	    return err
//	}
//	start = timeparse.CoerceFuture(start, n.Now())
//	fmt.Println(timeparse.Format(start))
package timeparse
