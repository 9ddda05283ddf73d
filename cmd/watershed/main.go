// Command watershed serves and runs the raster hydrology operations.
package main

func main() {
	Execute()
}
