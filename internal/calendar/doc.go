// Package calendar reads league schedules published as iCalendar feeds.
//
// Each VEVENT becomes one schedule row: the SUMMARY is split into home and away
// team, DTSTART gives date and kickoff, LOCATION gives the venue. Events whose
// kickoff has not been fixed yet, either date-only or flagged by a phrase in the
// DESCRIPTION, carry the open marker instead of a time.
package calendar
