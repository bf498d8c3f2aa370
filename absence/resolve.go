/*
resolve.go - The single join point between personal and global day maps

PURPOSE:
  Precedence is: personal entry first, global override second, else absent.
  This function is the ONLY code path that reads both maps; everything
  downstream (the engine, the API) goes through it, so the precedence rule
  cannot drift between call sites.
*/
package absence

// Resolver resolves what a calendar day counts as for a given person.
type Resolver struct {
	Personal *DayEntryStore
	Global   *GlobalDayStore
}

// ResolvedCategory returns the effective category of a date for a person:
// the personal entry if one exists, otherwise the global override,
// otherwise ok=false.
func (r Resolver) ResolvedCategory(person PersonID, date Date) (Category, bool) {
	if c, ok := r.Personal.Get(person, date); ok {
		return c, true
	}
	if c, ok := r.Global.Get(date); ok {
		return c, true
	}
	return "", false
}
