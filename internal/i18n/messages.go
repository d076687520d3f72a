package i18n

// Message keys.
const (
	KeyIntro           = "intro"
	KeyFoundLocation   = "found_loc"
	KeyLocationFail    = "loc_fail"
	KeyLocationError   = "loc_error"
	KeyManualLocPrompt = "manual_loc_prompt"
	KeyManualVerify    = "manual_verify"
	KeyManualFail      = "manual_fail"
	KeyAskSoil         = "ask_soil"
	KeyAskState        = "ask_state"
	KeyAskDistrict     = "ask_district"
	KeyAskSoilManual   = "ask_soil_manual"
	KeyAskSeason       = "ask_season"
	KeyAskArea         = "ask_area"
	KeyAreaError       = "area_error"
	KeyAreaInvalid     = "area_invalid"
	KeyAskIrrigation   = "ask_irrigation"
	KeyAnalyzing       = "analyzing"
	KeyFoundCrops      = "found_crops"
	KeyNoCrops         = "no_crops"
	KeyErrorRecs       = "error_recs"
	KeyResetPrompt     = "reset_prompt"
)

// Canonical option tokens. These are the language-neutral values stored in
// sessions and compared by the state machine.
const (
	OptionUseCurrentLocation = "Use Current Location"
	OptionSearchManually     = "Search Manually"
	OptionYes                = "Yes"
	OptionNo                 = "No"
	OptionNoSearchManually   = "No, Search Manually"
	OptionRed                = "Red"
	OptionBlack              = "Black"
	OptionSandy              = "Sandy"
	OptionLoam               = "Loam"
	OptionClay               = "Clay"
	OptionOther              = "Other"
	OptionKharif             = "Kharif"
	OptionRabi               = "Rabi"
	OptionZaid               = "Zaid"
)

var messages = map[string]map[string]string{
	"en": {
		KeyIntro:           "Hello! I am your farming assistant. Let's find the best crops for you. First, where is your farm located?",
		KeyFoundLocation:   "I've detected your location as {address}. Is this correct?",
		KeyLocationFail:    "Could not detect location details. Please type your location manually.",
		KeyLocationError:   "Error processing location. Please search manually.",
		KeyManualLocPrompt: "Please allow location access on your device or search manually.",
		KeyManualVerify:    "Found {place}. Is this correct?",
		KeyManualFail:      "I couldn't verify '{input}' on the map, but I'll note it down. Now, what type of soil do you have?",
		KeyAskSoil:         "Great. Now, what type of soil do you have?",
		KeyAskState:        "Please select your state:",
		KeyAskDistrict:     "Please select your district:",
		KeyAskSoilManual:   "Please type your soil type.",
		KeyAskSeason:       "Which farming season is this for?",
		KeyAskArea:         "What is the total land area (in acres)?",
		KeyAreaError:       "Land area must be greater than 0. Please enter a valid positive number (e.g. 5).",
		KeyAreaInvalid:     "I couldn't understand that number. Please enter a value like '5' or '2.5'.",
		KeyAskIrrigation:   "Is irrigation available?",
		KeyAnalyzing:       "Analyzing your farm profile...",
		KeyFoundCrops:      "Found {count} suitable crops.",
		KeyNoCrops:         "No specific crops found for these exact conditions.",
		KeyErrorRecs:       "Error generating recommendations.",
		KeyResetPrompt:     "Type 'reset' to start over.",
	},
	"hi": {
		KeyIntro:           "नमस्ते! मैं आपका कृषि सहायक हूँ। आइए आपके लिए सर्वोत्तम फसलें खोजें। सबसे पहले, आपका खेत कहाँ स्थित है?",
		KeyFoundLocation:   "मैंने आपके स्थान का पता {address} लगाया है। क्या यह सही है?",
		KeyLocationFail:    "स्थान का विवरण नहीं मिल सका। कृपया अपना स्थान मैन्युअल रूप से लिखें।",
		KeyLocationError:   "स्थान संसाधित करने में त्रुटि। कृपया मैन्युअल रूप से लिखें।",
		KeyManualLocPrompt: "कृपया अपने डिवाइस पर स्थान एक्सेस की अनुमति दें या मैन्युअल रूप से लिखें।",
		KeyManualVerify:    "{place} मिला। क्या यह सही है?",
		KeyManualFail:      "मैं मानचित्र पर '{input}' को सत्यापित नहीं कर सका, लेकिन मैंने इसे नोट कर लिया है। अब, आपके पास किस प्रकार की मिट्टी है?",
		KeyAskSoil:         "बहुत बढ़िया। अब, आपके पास किस प्रकार की मिट्टी है?",
		KeyAskState:        "कृपया अपना राज्य चुनें:",
		KeyAskDistrict:     "कृपया अपना जिला चुनें:",
		KeyAskSoilManual:   "कृपया अपनी मिट्टी के प्रकार लिखें।",
		KeyAskSeason:       "यह किस खेती के मौसम के लिए है?",
		KeyAskArea:         "कुल भूमि क्षेत्र (एकड़ में) कितना है?",
		KeyAreaError:       "भूमि का क्षेत्रफल 0 से अधिक होना चाहिए। कृपया एक मान्य सकारात्मक संख्या दर्ज करें (जैसे 5)।",
		KeyAreaInvalid:     "मैं उस संख्या को समझ नहीं सका। कृपया '5' या '2.5' जैसा मान दर्ज करें।",
		KeyAskIrrigation:   "क्या सिंचाई उपलब्ध है?",
		KeyAnalyzing:       "आपके कृषि प्रोफ़ाइल का विश्लेषण कर रहा हूँ...",
		KeyFoundCrops:      "{count} उपयुक्त फसलें मिलीं।",
		KeyNoCrops:         "इन सटीक स्थितियों के लिए कोई विशेष फसल नहीं मिली।",
		KeyErrorRecs:       "अनुशंसाएँ उत्पन्न करने में त्रुटि।",
		KeyResetPrompt:     "पुनः आरंभ करने के लिए 'reset' टाइप करें।",
	},
	"te": {
		KeyIntro:           "నమస్కారం! నేను మీ వ్యవసాయ సహాయకుడిని. మీ కోసం ఉత్తమ పంటలను కనుగొందాం. ముందుగా, మీ పొలం ఎక్కడ ఉంది?",
		KeyFoundLocation:   "నేను మీ స్థానాన్ని {address} గా గుర్తించాను. ఇది సరైనదేనా?",
		KeyLocationFail:    "స్థాన వివరాలను గుర్తించలేకపోయాను. దయచేసి మీ స్థానాన్ని మాన్యువల్‌గా టైప్ చేయండి.",
		KeyLocationError:   "స్థానాన్ని ప్రాసెస్ చేయడంలో లోపం. దయచేసి మాన్యువల్‌గా టైప్ చేయండి.",
		KeyManualLocPrompt: "దయచేసి మీ పరికరంలో స్థాన ప్రాప్యతను అనుమతించండి లేదా మాన్యువల్‌గా టైప్ చేయండి.",
		KeyManualVerify:    "{place} కనుగొనబడింది. ఇది సరైనదేనా?",
		KeyManualFail:      "నేను మ్యాప్‌లో '{input}' ని ధృవీకరించలేకపోయాను, కానీ నేను గమనించాను. ఇప్పుడు, మీ నేల రకం ఏమిటి?",
		KeyAskSoil:         "బాగుంది. ఇప్పుడు, మీ నేల రకం ఏమిటి?",
		KeyAskState:        "దయచేసి మీ రాష్ట్రాన్ని ఎంచుకోండి:",
		KeyAskDistrict:     "దయచేసి మీ జిల్లాను ఎంచుకోండి:",
		KeyAskSoilManual:   "దయచేసి మీ నేల రకాన్ని టైప్ చేయండి.",
		KeyAskSeason:       "ఇది ఏ వ్యవసాయ సీజన్ కోసం?",
		KeyAskArea:         "మొత్తం భూమి విస్తీర్ణం (ఎకరాల్లో) ఎంత?",
		KeyAreaError:       "భూమి విస్తీర్ణం 0 కంటే ఎక్కువగా ఉండాలి. దయచేసి సరైన సంఖ్యను నమోదు చేయండి (ఉదా. 5).",
		KeyAreaInvalid:     "ఆ సంఖ్య నాకు అర్థం కాలేదు. దయచేసి '5' లేదా '2.5' వంటి విలువను నమోదు చేయండి.",
		KeyAskIrrigation:   "నీటిపారుదల సౌకర్యం ఉందా?",
		KeyAnalyzing:       "మీ వ్యవసాయ ప్రొఫైల్‌ను విశ్లేషిస్తున్నాను...",
		KeyFoundCrops:      "{count} అనుకూలమైన పంటలు కనుగొనబడ్డాయి.",
		KeyNoCrops:         "ఈ పరిస్థితులకు తగిన పంటలు కనుగొనబడలేదు.",
		KeyErrorRecs:       "సిఫార్సులను రూపొందించడంలో లోపం.",
		KeyResetPrompt:     "మళ్లీ ప్రారంభించడానికి 'reset' అని టైప్ చేయండి.",
	},
}

// optionLabels maps canonical options to their localized button labels.
// English needs no table; options pass through unchanged.
var optionLabels = map[string]map[string]string{
	"hi": {
		OptionUseCurrentLocation: "वर्तमान स्थान का उपयोग करें",
		OptionSearchManually:     "खोज करें",
		OptionYes:                "हाँ",
		OptionNo:                 "नहीं",
		OptionNoSearchManually:   "नहीं, खोज करें",
		OptionRed:                "लाल",
		OptionBlack:              "काली",
		OptionSandy:              "रेतीली",
		OptionLoam:               "दोमट",
		OptionClay:               "चिकनी",
		OptionOther:              "अन्य",
		OptionKharif:             "खरीफ",
		OptionRabi:               "रबी",
		OptionZaid:               "जायद",
	},
	"te": {
		OptionUseCurrentLocation: "ప్రస్తుత స్థానాన్ని ఉపయోగించండి",
		OptionSearchManually:     "మాన్యువల్‌గా శోధించండి",
		OptionYes:                "అవును",
		OptionNo:                 "కాదు",
		OptionNoSearchManually:   "కాదు, మాన్యువల్‌గా శోధించండి",
		OptionRed:                "ఎరుపు",
		OptionBlack:              "నల్ల",
		OptionSandy:              "ఇసుక",
		OptionLoam:               "లోమ్",
		OptionClay:               "బంకమట్టి",
		OptionOther:              "ఇతర",
		OptionKharif:             "ఖరీఫ్",
		OptionRabi:               "రబీ",
		OptionZaid:               "జైద్",
	},
}

// CanonicalOptions lists every canonical option token in a stable order.
var CanonicalOptions = []string{
	OptionUseCurrentLocation,
	OptionSearchManually,
	OptionYes,
	OptionNo,
	OptionNoSearchManually,
	OptionRed,
	OptionBlack,
	OptionSandy,
	OptionLoam,
	OptionClay,
	OptionOther,
	OptionKharif,
	OptionRabi,
	OptionZaid,
}
