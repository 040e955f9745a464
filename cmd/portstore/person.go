package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/safing/portstore/person"
)

// find returns the person with the given ID, or by name if byID is not set.
func (a *app) find(nameOrID string, byID bool) (*person.Person, error) {
	if byID {
		return person.GetByID(nameOrID, a.m)
	}
	return person.GetByName(nameOrID, a.m)
}

func printPersons(w io.Writer, persons []*person.Person) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPROFESSION\tORGANIZATION")
	for _, p := range persons {
		p.Lock()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Profession, p.Organization)
		p.Unlock()
	}
	return tw.Flush()
}

func printPerson(w io.Writer, p *person.Person) {
	p.Lock()
	defer p.Unlock()

	fmt.Fprintf(w, "ID:           %s\n", p.ID)
	fmt.Fprintf(w, "Name:         %s\n", p.Name)
	fmt.Fprintf(w, "Profession:   %s\n", p.Profession)
	fmt.Fprintf(w, "Organization: %s\n", p.Organization)
	fmt.Fprintf(w, "Notes:        %s\n", p.Notes)
}
