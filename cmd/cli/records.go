package main

import (
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// personView mirrors the server's JSON shape for a record.
type personView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Nickname      string `json:"nickname"`
	PhoneNumber   string `json:"phone_number"`
	BirthDate     string `json:"birth_date"`
	Relationship  string `json:"relationship"`
	Zodiac        string `json:"zodiac"`
	PhotoURL      string `json:"photo_url"`
	Message       string `json:"personalized_message"`
	FavoriteColor string `json:"favorite_color"`
	Hobbies       string `json:"hobbies"`
	GiftIdeas     string `json:"gift_ideas"`
	Notes         string `json:"notes"`
}

type celebrantView struct {
	personView
	TurningAge int `json:"turning_age"`
}

type upcomingView struct {
	personView
	NextOccurrence string `json:"next_occurrence"`
	DaysUntil      int    `json:"days_until"`
}

type rankedView struct {
	Today    []celebrantView `json:"today"`
	Next     *upcomingView   `json:"next"`
	Upcoming []upcomingView  `json:"upcoming"`
}

type tokenResp struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// personFields is the set of form flags shared by add and update.
type personFields struct {
	name, nickname, phone, date, relationship, zodiac string
	message, color, hobbies, gifts, notes             string
	photo                                             string
}

func (f *personFields) register(fs *flag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "person's name")
	fs.StringVar(&f.nickname, "nickname", "", "nickname")
	fs.StringVar(&f.phone, "phone", "", "phone number (10 digits)")
	fs.StringVar(&f.date, "date", "", "birth date YYYY-MM-DD")
	fs.StringVar(&f.relationship, "relationship", "", "relationship")
	fs.StringVar(&f.zodiac, "zodiac", "", "zodiac sign")
	fs.StringVar(&f.message, "message", "", "personalized message")
	fs.StringVar(&f.color, "color", "", "favorite color")
	fs.StringVar(&f.hobbies, "hobbies", "", "hobbies")
	fs.StringVar(&f.gifts, "gifts", "", "gift ideas")
	fs.StringVar(&f.notes, "notes", "", "notes")
	fs.StringVar(&f.photo, "photo", "", "path to a photo file")
}

// formKey maps a flag name to its form field; photo is handled separately.
var formKey = map[string]string{
	"name":         "name",
	"nickname":     "nickname",
	"phone":        "phone_number",
	"date":         "birth_date",
	"relationship": "relationship",
	"zodiac":       "zodiac",
	"message":      "personalized_message",
	"color":        "favorite_color",
	"hobbies":      "hobbies",
	"gifts":        "gift_ideas",
	"notes":        "notes",
}

// buildForm writes the set fields (and optional photo file) as multipart
// form data. Only flags listed in set are included, so update sends just
// what the user asked to change.
func buildForm(w *multipart.Writer, fields map[string]string, photoPath string) error {
	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			return err
		}
	}
	if photoPath != "" {
		f, err := os.Open(photoPath)
		if err != nil {
			return err
		}
		defer f.Close()
		part, err := w.CreateFormFile("photo", filepath.Base(photoPath))
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f); err != nil {
			return err
		}
	}
	return w.Close()
}

// setFields collects the form values for flags the user actually passed.
func setFields(fs *flag.FlagSet, f *personFields) map[string]string {
	byFlag := map[string]*string{
		"name": &f.name, "nickname": &f.nickname, "phone": &f.phone,
		"date": &f.date, "relationship": &f.relationship, "zodiac": &f.zodiac,
		"message": &f.message, "color": &f.color, "hobbies": &f.hobbies,
		"gifts": &f.gifts, "notes": &f.notes,
	}
	out := make(map[string]string)
	fs.Visit(func(fl *flag.Flag) {
		if p, ok := byFlag[fl.Name]; ok {
			out[formKey[fl.Name]] = *p
		}
	})
	return out
}

func (c *client) sendForm(method, path string, fields map[string]string, photoPath string, out any) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(buildForm(mw, fields, photoPath))
	}()
	return c.do(method, path, mw.FormDataContentType(), pr, out)
}

// ---- subcommands ----

func cmdRegister(c *client, args []string) error {
	user, pass, err := credentials("register", args)
	if err != nil {
		return err
	}
	if err := c.doJSON("POST", "/api/register", map[string]string{"username": user, "password": pass}, nil); err != nil {
		return err
	}
	fmt.Println("registered", user)
	return nil
}

func cmdLogin(c *client, args []string) error {
	user, pass, err := credentials("login", args)
	if err != nil {
		return err
	}
	var tok tokenResp
	if err := c.doJSON("POST", "/api/login", map[string]string{"username": user, "password": pass}, &tok); err != nil {
		return err
	}
	if err := saveToken(tok.AccessToken, tok.ExpiresAt); err != nil {
		return err
	}
	fmt.Println("logged in, token cached until", tok.ExpiresAt.Format(time.RFC3339))
	return nil
}

func credentials(cmd string, args []string) (string, string, error) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	user := fs.String("user", "", "username")
	pass := fs.String("pass", "", "password")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	if *user == "" || *pass == "" {
		return "", "", fmt.Errorf("%s requires -user and -pass", cmd)
	}
	return *user, *pass, nil
}

func cmdAdd(c *client, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	var f personFields
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if f.name == "" || f.phone == "" || f.date == "" {
		return fmt.Errorf("add requires -name, -phone and -date")
	}
	var p personView
	if err := c.sendForm("POST", "/api/birthdays/", setFields(fs, &f), f.photo, &p); err != nil {
		return err
	}
	fmt.Println("added", p.ID)
	return nil
}

func cmdList(c *client, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("list takes no arguments")
	}
	var people []personView
	if err := c.do("GET", "/api/birthdays/", "", nil, &people); err != nil {
		return err
	}
	for _, p := range people {
		fmt.Printf("%s  %-20s  %s\n", p.ID, p.Name, p.BirthDate)
	}
	return nil
}

func cmdUpcoming(c *client, args []string) error {
	fs := flag.NewFlagSet("upcoming", flag.ExitOnError)
	today := fs.String("today", "", "override today's date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := "/api/birthdays/upcoming"
	if *today != "" {
		path += "?today=" + *today
	}
	var v rankedView
	if err := c.do("GET", path, "", nil, &v); err != nil {
		return err
	}
	for _, t := range v.Today {
		fmt.Printf("today:    %s turns %d\n", t.Name, t.TurningAge)
	}
	if v.Next != nil {
		fmt.Printf("next:     %s on %s (in %d days)\n", v.Next.Name, v.Next.NextOccurrence, v.Next.DaysUntil)
	}
	for _, u := range v.Upcoming {
		fmt.Printf("upcoming: %s on %s (in %d days)\n", u.Name, u.NextOccurrence, u.DaysUntil)
	}
	return nil
}

func cmdShow(c *client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: bb show <id>")
	}
	var p personView
	if err := c.do("GET", "/api/birthdays/"+args[0], "", nil, &p); err != nil {
		return err
	}
	printPerson(p)
	return nil
}

func cmdUpdate(c *client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: bb update <id> [flags]")
	}
	id, rest := args[0], args[1:]
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	var f personFields
	f.register(fs)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	fields := setFields(fs, &f)
	if len(fields) == 0 && f.photo == "" {
		return fmt.Errorf("update: nothing to change")
	}
	var p personView
	if err := c.sendForm("PUT", "/api/birthdays/"+id, fields, f.photo, &p); err != nil {
		return err
	}
	fmt.Println("updated", p.ID)
	return nil
}

func cmdDelete(c *client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: bb del <id>")
	}
	if err := c.do("DELETE", "/api/birthdays/"+args[0], "", nil, nil); err != nil {
		return err
	}
	fmt.Println("deleted", args[0])
	return nil
}

func printPerson(p personView) {
	fmt.Println("id:          ", p.ID)
	fmt.Println("name:        ", p.Name)
	if p.Nickname != "" {
		fmt.Println("nickname:    ", p.Nickname)
	}
	fmt.Println("phone:       ", p.PhoneNumber)
	fmt.Println("birth date:  ", p.BirthDate)
	fmt.Println("relationship:", p.Relationship)
	if p.Zodiac != "" {
		fmt.Println("zodiac:      ", p.Zodiac)
	}
	if p.PhotoURL != "" {
		fmt.Println("photo:       ", p.PhotoURL)
	}
	if p.Message != "" {
		fmt.Println("message:     ", p.Message)
	}
	if p.FavoriteColor != "" {
		fmt.Println("color:       ", p.FavoriteColor)
	}
	if p.Hobbies != "" {
		fmt.Println("hobbies:     ", p.Hobbies)
	}
	if p.GiftIdeas != "" {
		fmt.Println("gift ideas:  ", p.GiftIdeas)
	}
	if p.Notes != "" {
		fmt.Println("notes:       ", p.Notes)
	}
}
