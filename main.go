package main

import "challenge-feed-backend/cmd"

func main() {
	cmd.Run()
}
