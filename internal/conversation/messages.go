package conversation

// Button labels.
const (
	ChoiceGeneral     = "📘 General Title Help"
	ChoiceIssue       = "🚨 Problem with Vehicle Service Title Issue"
	ChoiceRecordCheck = "📋 Record Check"
	ChoiceSkip        = "⏭️ Skip For Now"
	ChoiceRecordYes   = "✅ Yes, that's correct"
	ChoiceRecordNo    = "❌ No, that's outdated"
	ChoiceFormsYes    = "✅ Yes"
	ChoiceFormsNo     = "❌ No"
)

// VerificationCode is the only code AwaitingVerificationCode accepts. It
// is a demo stand-in for a one-time code; nothing is actually sent.
const VerificationCode = "0000"

const (
	msgHello     = "Hey there! I'm <strong>Title Tom</strong>."
	msgNavigate  = "I'm here to help you navigate the confusing world of titles."
	msgIntroAsk  = "Are you looking for general title information/instructions, or do you have a vehicle title issue with one of our services like SHiFT, Car Donation Wizard, or You Call We Haul?"
	msgGeneral   = "Great! Let's figure out your state of residence to get started."
	msgIssue     = "Got it! Before we dive in, would you like me to check if we already have a record of your vehicle?"
	msgAskID     = "Please enter your email or phone number so I can check for a record on file."
	msgSkip      = "No problem! Let's figure out your state of residence."
	msgAskState  = "Please type your state of residence (e.g., Alabama, CA, etc.):"
	msgAskPhone  = "What's your Phone Number?"
	msgCodeSent  = "📧 We've sent a 4-digit code to the email address you provided. Please type that code here to verify access (DEMO CODE:<strong>" + VerificationCode + "</strong>)."
	msgNoRecord  = "❌ No record found for that contact. No worries — let's continue manually."
	msgBadCode   = "❌ That code is incorrect. Please try entering the 4-digit code again."
	msgSummary   = "✅ It looks like your <strong>%s %s %s</strong> is registered in <strong>%s</strong>. Is this still accurate?"
	msgNoPending = "Sorry—your record isn’t available. Let’s proceed manually."
	msgUseState  = "Awesome. I'll use your state of <strong>%s</strong> to pull relevant info."
	msgStatus    = "Based on our records regarding your profile, your current title status shows <strong>%s</strong>."
	msgOutdated  = "No worries — let's update your state of residence."
	msgNoRemedy  = "I don’t have a specific remedy on file. Let’s continue."
	msgRemedy    = "🛠️ To address this, here's what I recommend: <strong>%s</strong>"
	msgFormOffer = "I noticed your remedy mentions the following form(s):<br><ul>%s</ul>Would you like me to provide links to these forms?"
	msgFormLink  = `📄 <strong>%s</strong><br><a href="%s" target="_blank" style="color:#3b82f6;text-decoration:underline;">Open Form</a>`
	msgNoForms   = "No problem. We can continue without the forms for now."
	msgPerfect   = "Perfect. I'll pull all the information I can regarding <strong>%s Title Information</strong>. Here are some of the routes we can take:"
	msgAskAny    = "Sure! What would you like to ask me about titles?"
	msgDownload  = `📥 You can download the <strong>%s</strong> below:<br><br><a href="%s" target="_blank" style="color: #3b82f6; text-decoration: underline;">📄 Open %s</a>`
	msgAIError   = "Error contacting AI service."
)
