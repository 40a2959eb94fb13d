// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package conf provides .conf file parsing and a map of the resulting
// [section]option=value,... structure along with typed option fetchers.
//
// A ConfMap is built from an INI-style .conf file and/or a sequence of
// "Section.Option=Value[,Value]*" strings (e.g. command line overrides).
// Later updates replace earlier values for the same [section]option.
package conf

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type ConfMapOption []string
type ConfMapSection map[string]ConfMapOption
type ConfMap map[string]ConfMapSection

// MakeConfMap returns an empty ConfMap
func MakeConfMap() (confMap ConfMap) {
	confMap = make(ConfMap)
	return
}

// MakeConfMapFromFile returns a ConfMap loaded from the specified file
func MakeConfMapFromFile(confFilePath string) (confMap ConfMap, err error) {
	confMap = MakeConfMap()
	err = confMap.UpdateFromFile(confFilePath)
	return
}

// MakeConfMapFromStrings returns a ConfMap loaded from the specified
// "Section.Option=Value[,Value]*" strings
func MakeConfMapFromStrings(confStrings []string) (confMap ConfMap, err error) {
	confMap = MakeConfMap()
	err = confMap.UpdateFromStrings(confStrings)
	return
}

const assignment = "([ \t]*[=:][ \t]*)"
const dot = "(\\.)"
const leftBracket = "(\\[)"
const rightBracket = "(\\])"
const sectionName = "([0-9A-Za-z_\\-/:\\.]+)"
const separator = "([ \t]+|([ \t]*,[ \t]*))"
const token = "(([0-9A-Za-z_\\*\\-/:\\.\\[\\]]+)\\$?)"
const whiteSpace = "([ \t]+)"

// Conf strings are of the form: <section>.<option>=<value>[,<value>]*

var stringRE = regexp.MustCompile("\\A" + token + dot + token + assignment + "(" + token + "(" + separator + token + ")*)?\\z")
var sectionNameOptionNameSeparatorRE = regexp.MustCompile(dot)

// Section header lines are of the form: [<section>]

var sectionHeaderLineRE = regexp.MustCompile("\\A" + leftBracket + token + rightBracket + "\\z")
var sectionNameRE = regexp.MustCompile(sectionName)

// Option lines are of the form: <option>=<value>[,<value>]*

var optionLineRE = regexp.MustCompile("\\A" + token + assignment + "(" + token + "(" + separator + token + ")*)?\\z")

var optionNameOptionValuesSeparatorRE = regexp.MustCompile(assignment)
var optionValueSeparatorRE = regexp.MustCompile(separator)

// Include lines are of the form: .include <path>

var includeLineRE = regexp.MustCompile("\\A\\.include" + whiteSpace + token + "\\z")
var includeFilePathSeparatorRE = regexp.MustCompile(whiteSpace)

// UpdateFromString modifies a pre-existing ConfMap based on an update
// specified in confString (e.g., from an extra command-line argument)
func (confMap ConfMap) UpdateFromString(confString string) (err error) {
	confStringTrimmed := strings.Trim(confString, " \t") // Trim leading & trailing spaces & tabs

	if 0 == len(confStringTrimmed) {
		err = fmt.Errorf("trimmed confString: \"%v\" was found to be empty", confString)
		return
	}

	if !stringRE.MatchString(confStringTrimmed) {
		err = fmt.Errorf("malformed confString: \"%v\"", confString)
		return
	}

	// confStringTrimmed well formed, so extract Section Name, Option Name, and Values

	confStringSectionNameOptionPayloadStrings := sectionNameOptionNameSeparatorRE.Split(confStringTrimmed, 2)

	sectionName := confStringSectionNameOptionPayloadStrings[0]
	optionPayload := confStringSectionNameOptionPayloadStrings[1]

	confStringOptionNameOptionValuesStrings := optionNameOptionValuesSeparatorRE.Split(optionPayload, 2)

	optionName := confStringOptionNameOptionValuesStrings[0]
	optionValues := confStringOptionNameOptionValuesStrings[1]

	optionValuesSplit := optionValueSeparatorRE.Split(optionValues, -1)

	if (1 == len(optionValuesSplit)) && ("" == optionValuesSplit[0]) {
		// Handle special case where optionValuesSplit == []string{""}... changing it to []string{}

		optionValuesSplit = []string{}
	}

	section, found := confMap[sectionName]

	if !found {
		// Need to create new Section

		section = make(ConfMapSection)
		confMap[sectionName] = section
	}

	section[optionName] = optionValuesSplit

	// If we reach here, confString successfully processed

	err = nil
	return
}

// UpdateFromStrings modifies a pre-existing ConfMap based on updates
// specified in confStrings (e.g., from extra command-line arguments)
func (confMap ConfMap) UpdateFromStrings(confStrings []string) (err error) {
	for _, confString := range confStrings {
		err = confMap.UpdateFromString(confString)
		if nil != err {
			return
		}
	}
	err = nil
	return
}

// UpdateFromFile modifies a pre-existing ConfMap based on updates specified in confFilePath
func (confMap ConfMap) UpdateFromFile(confFilePath string) (err error) {
	var (
		absConfFilePath                          string
		confFileBytes                            []byte
		confFileBytesLineOffsetStart             int
		confFileBytesOffset                      int
		currentLine                              string
		currentLineDotIncludeIncludePathStrings  []string
		currentLineOptionNameOptionValuesStrings []string
		currentSection                           ConfMapSection
		currentSectionName                       string
		dirAbsConfFilePath                       string
		found                                    bool
		lastRune                                 rune
		nestedConfFilePath                       string
		optionName                               string
		optionValues                             string
		optionValuesSplit                        []string
		runeSize                                 int
	)

	if "-" == confFilePath {
		confFileBytes, err = ioutil.ReadAll(os.Stdin)
		if nil != err {
			return
		}
	} else {
		confFileBytes, err = ioutil.ReadFile(confFilePath)
		if nil != err {
			return
		}
	}

	lastRune = '\n'

	for len(confFileBytes) > confFileBytesOffset {
		// Consume next rune

		lastRune, runeSize = utf8.DecodeRune(confFileBytes[confFileBytesOffset:])
		if utf8.RuneError == lastRune {
			err = fmt.Errorf("file %v contained invalid UTF-8 at byte %v", confFilePath, confFileBytesOffset)
			return
		}

		if '\n' == lastRune {
			// Terminate currentLine and process it

			if confFileBytesLineOffsetStart < confFileBytesOffset {
				currentLine = string(confFileBytes[confFileBytesLineOffsetStart:confFileBytesOffset])

				currentLine = strings.SplitN(currentLine, ";", 2)[0] // Trim comment after ';'
				currentLine = strings.SplitN(currentLine, "#", 2)[0] // Trim comment after '#'
				currentLine = strings.Trim(currentLine, " \t")       // Trim leading & trailing spaces & tabs

				if 0 < len(currentLine) {
					// Process non-empty, non-comment portion of currentLine

					if includeLineRE.MatchString(currentLine) {
						// Include found

						currentLineDotIncludeIncludePathStrings = includeFilePathSeparatorRE.Split(currentLine, 2)

						nestedConfFilePath = currentLineDotIncludeIncludePathStrings[1]

						if '/' != nestedConfFilePath[0] {
							// Need to adjust for relative path

							absConfFilePath, err = filepath.Abs(confFilePath)
							if nil != err {
								return
							}

							dirAbsConfFilePath = filepath.Dir(absConfFilePath)

							nestedConfFilePath = dirAbsConfFilePath + "/" + nestedConfFilePath
						}

						err = confMap.UpdateFromFile(nestedConfFilePath)
						if nil != err {
							return
						}

						currentSectionName = ""
					} else if sectionHeaderLineRE.MatchString(currentLine) {
						// Section Header found

						currentSectionName = sectionNameRE.FindString(currentLine)
					} else {
						if "" == currentSectionName {
							// Options only allowed within a Section

							err = fmt.Errorf("file %v did not start with a Section Name", confFilePath)
							return
						}

						// Option within currentSectionName possibly found

						if !optionLineRE.MatchString(currentLine) {
							// Expected valid Option Line

							err = fmt.Errorf("file %v malformed line '%v'", confFilePath, currentLine)
							return
						}

						// Option Line found, so extract Option Name and Option Values

						currentLineOptionNameOptionValuesStrings = optionNameOptionValuesSeparatorRE.Split(currentLine, 2)

						optionName = currentLineOptionNameOptionValuesStrings[0]
						optionValues = currentLineOptionNameOptionValuesStrings[1]

						optionValuesSplit = optionValueSeparatorRE.Split(optionValues, -1)

						if (1 == len(optionValuesSplit)) && ("" == optionValuesSplit[0]) {
							// Handle special case where optionValuesSplit == []string{""}... changing it to []string{}

							optionValuesSplit = []string{}
						}

						// Insert or Update confMap creating a new Section if necessary

						currentSection, found = confMap[currentSectionName]

						if !found {
							// Need to create the new Section

							currentSection = make(ConfMapSection)
							confMap[currentSectionName] = currentSection
						}

						currentSection[optionName] = optionValuesSplit
					}
				}
			}

			// Record where next line would start

			confFileBytesLineOffsetStart = confFileBytesOffset + runeSize
		}

		// Loop back for next rune

		confFileBytesOffset += runeSize
	}

	if '\n' != lastRune {
		err = fmt.Errorf("file %v did not end in a '\n' character", confFilePath)
		return
	}

	// If we reach here, confFilePath successfully processed

	err = nil
	return
}

// VerifyOptionIsMissing returns an error if [sectionName]optionName is present
func (confMap ConfMap) VerifyOptionIsMissing(sectionName string, optionName string) (err error) {
	section, ok := confMap[sectionName]
	if !ok {
		err = nil
		return
	}

	_, ok = section[optionName]
	if ok {
		err = fmt.Errorf("[%v]%v present", sectionName, optionName)
	} else {
		err = nil
	}

	return
}

// VerifyOptionValueIsEmpty returns an error if [sectionName]optionName's string value is not empty
func (confMap ConfMap) VerifyOptionValueIsEmpty(sectionName string, optionName string) (err error) {
	section, ok := confMap[sectionName]
	if !ok {
		err = fmt.Errorf("[%v] missing", sectionName)
		return
	}

	option, ok := section[optionName]
	if !ok {
		err = fmt.Errorf("[%v]%v missing", sectionName, optionName)
		return
	}

	if 0 == len(option) {
		err = nil
	} else {
		err = fmt.Errorf("[%v]%v must have no value", sectionName, optionName)
	}

	return
}

// FetchOptionValueStringSlice returns [sectionName]optionName's string values as a []string
func (confMap ConfMap) FetchOptionValueStringSlice(sectionName string, optionName string) (optionValue []string, err error) {
	optionValue = []string{}

	section, ok := confMap[sectionName]
	if !ok {
		err = fmt.Errorf("[%v] missing", sectionName)
		return
	}

	option, ok := section[optionName]
	if !ok {
		err = fmt.Errorf("[%v]%v missing", sectionName, optionName)
		return
	}

	optionValue = option

	return
}

// FetchOptionValueString returns [sectionName]optionName's single string value
func (confMap ConfMap) FetchOptionValueString(sectionName string, optionName string) (optionValue string, err error) {
	optionValue = ""

	optionValueSlice, err := confMap.FetchOptionValueStringSlice(sectionName, optionName)
	if nil != err {
		return
	}

	if 1 != len(optionValueSlice) {
		err = fmt.Errorf("[%v]%v must be single-valued", sectionName, optionName)
		return
	}

	optionValue = optionValueSlice[0]

	err = nil
	return
}

// FetchOptionValueBool returns [sectionName]optionName's single string value converted to a bool
func (confMap ConfMap) FetchOptionValueBool(sectionName string, optionName string) (optionValue bool, err error) {
	optionValueString, err := confMap.FetchOptionValueString(sectionName, optionName)
	if nil != err {
		return
	}

	optionValueStringDownshifted := strings.ToLower(optionValueString)

	switch optionValueStringDownshifted {
	case "yes":
		fallthrough
	case "on":
		fallthrough
	case "true":
		optionValue = true
	case "no":
		fallthrough
	case "off":
		fallthrough
	case "false":
		optionValue = false
	default:
		err = fmt.Errorf("Couldn't interpret %q as boolean (expected one of 'true'/'false'/'yes'/'no'/'on'/'off')", optionValueString)
		return
	}

	err = nil
	return
}

// FetchOptionValueUint16 returns [sectionName]optionName's single string value converted to a uint16
func (confMap ConfMap) FetchOptionValueUint16(sectionName string, optionName string) (optionValue uint16, err error) {
	optionValue = 0

	optionValueString, err := confMap.FetchOptionValueString(sectionName, optionName)
	if nil != err {
		return
	}

	optionValueAsUint64, err := strconv.ParseUint(optionValueString, 10, 16)
	if nil != err {
		err = fmt.Errorf("[%v]%v strconv.ParseUint() failure: %v", sectionName, optionName, err)
		return
	}

	optionValue = uint16(optionValueAsUint64)

	err = nil
	return
}

// FetchOptionValueUint32 returns [sectionName]optionName's single string value converted to a uint32
//
// Both decimal and 0x-prefixed hexadecimal representations are accepted since
// guest physical addresses are conventionally written in hex.
func (confMap ConfMap) FetchOptionValueUint32(sectionName string, optionName string) (optionValue uint32, err error) {
	optionValue = 0

	optionValueString, err := confMap.FetchOptionValueString(sectionName, optionName)
	if nil != err {
		return
	}

	optionValueAsUint64, err := strconv.ParseUint(optionValueString, 0, 32)
	if nil != err {
		err = fmt.Errorf("[%v]%v strconv.ParseUint() failure: %v", sectionName, optionName, err)
		return
	}

	optionValue = uint32(optionValueAsUint64)

	err = nil
	return
}

// FetchOptionValueUint64 returns [sectionName]optionName's single string value converted to a uint64
func (confMap ConfMap) FetchOptionValueUint64(sectionName string, optionName string) (optionValue uint64, err error) {
	optionValue = 0

	optionValueString, err := confMap.FetchOptionValueString(sectionName, optionName)
	if nil != err {
		return
	}

	optionValue, err = strconv.ParseUint(optionValueString, 0, 64)
	if nil != err {
		err = fmt.Errorf("[%v]%v strconv.ParseUint() failure: %v", sectionName, optionName, err)
		optionValue = 0
		return
	}

	err = nil
	return
}

// FetchOptionValueFloat64 returns [sectionName]optionName's single string value converted to a float64
func (confMap ConfMap) FetchOptionValueFloat64(sectionName string, optionName string) (optionValue float64, err error) {
	optionValue = 0.0

	optionValueString, err := confMap.FetchOptionValueString(sectionName, optionName)
	if nil != err {
		return
	}

	optionValue, err = strconv.ParseFloat(optionValueString, 64)
	if nil != err {
		err = fmt.Errorf("[%v]%v strconv.ParseFloat() failure: %v", sectionName, optionName, err)
		optionValue = 0.0
		return
	}

	err = nil
	return
}

// FetchOptionValueDuration returns [sectionName]optionName's single string value converted to a time.Duration
func (confMap ConfMap) FetchOptionValueDuration(sectionName string, optionName string) (optionValue time.Duration, err error) {
	optionValue = time.Duration(0)

	optionValueString, err := confMap.FetchOptionValueString(sectionName, optionName)
	if nil != err {
		return
	}

	optionValue, err = time.ParseDuration(optionValueString)
	if nil != err {
		err = fmt.Errorf("[%v]%v time.ParseDuration() failure: %v", sectionName, optionName, err)
		optionValue = time.Duration(0)
		return
	}

	err = nil
	return
}
