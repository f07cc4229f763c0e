// Package normalize turns filtered league rows into schedule entries.
//
// For every row it assigns the club team code, replaces long-form club names
// with team codes in all free-text fields, and derives the weekday, week label,
// display time, timestamp and result line.
//
// Team code assignment depends on the source table:
//   - fixed: the table belongs to one team
//   - numeral: the table covers several teams told apart by a roman numeral
//     after the club name, e.g. "USC Münster VI" and "USC Münster V"
//   - agegroup: the team follows from the age group at the end of the round label
package normalize
