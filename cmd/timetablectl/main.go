package main

import "github.com/noah-isme/uni-timetable-api/internal/cli"

func main() {
	cli.Execute()
}
